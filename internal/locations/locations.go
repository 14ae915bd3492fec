// Package locations maps the raw location strings of catalog holdings to
// library names and street addresses. The tables live in an embedded YAML
// file; the Tallinn Central Library system gets branch-level resolution.
package locations

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/goodreader/internal/match"
)

//go:embed libraries.yaml
var librariesYAML []byte

// Place is a resolved library location.
type Place struct {
	Name    string
	Address string
}

type tableEntry struct {
	Prefix  string `yaml:"prefix"`
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type tables struct {
	Libraries []tableEntry `yaml:"libraries"`
	Branches  []tableEntry `yaml:"branches"`
}

const centralPrefix = "TlnRK"

// centralFallback catches TlnRK branches missing from the table; the main
// building is close enough for a map marker.
var centralFallback = Place{Name: "Tallinna Keskraamatukogu", Address: "Tallinn"}

var (
	loadOnce  sync.Once
	libraries []tableEntry
	branches  map[string]Place
	mainHouse Place
)

func load() {
	loadOnce.Do(func() {
		var t tables
		if err := yaml.Unmarshal(librariesYAML, &t); err != nil {
			panic(fmt.Sprintf("locations: embedded table is invalid: %v", err))
		}
		libraries = t.Libraries
		branches = make(map[string]Place, len(t.Branches))
		for _, b := range t.Branches {
			branches[slug(b.Key)] = Place{Name: b.Name, Address: b.Address}
		}
		for _, lib := range t.Libraries {
			if lib.Prefix == "TLKR" {
				mainHouse = Place{Name: lib.Name, Address: lib.Address}
			}
		}
	})
}

var slugClean = regexp.MustCompile(`[^A-Z0-9]`)

// slug folds a branch token to uppercase ASCII letters and digits, so
// "Väike-Õismäe" and "VÄIKEÕISMÄE" index the same table row.
func slug(s string) string {
	return slugClean.ReplaceAllString(strings.ToUpper(match.ASCIIFold(s)), "")
}

// Resolve maps a raw holding location to a Place. Central-library locations
// resolve down to the branch; other known prefixes resolve to the library's
// main address. Unknown locations pass through with an empty address, the
// geocoder skips those.
func Resolve(loc string) Place {
	load()

	if strings.HasPrefix(loc, centralPrefix) {
		rest := strings.TrimLeft(strings.TrimPrefix(loc, centralPrefix), " ,:-")
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return mainHouse
		}
		if place, ok := branches[slug(fields[0])]; ok {
			return place
		}
		return centralFallback
	}

	for _, lib := range libraries {
		if strings.HasPrefix(loc, lib.Prefix) {
			return Place{Name: lib.Name, Address: lib.Address}
		}
	}
	return Place{Name: loc}
}
