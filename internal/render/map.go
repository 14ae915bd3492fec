// Package render turns resolved wish lists into output artifacts: a Leaflet
// map of libraries with available copies, a cover gallery page and a styled
// terminal summary.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"sort"

	"github.com/lepinkainen/goodreader/internal/geocode"
	"github.com/lepinkainen/goodreader/internal/match"
	"github.com/lepinkainen/goodreader/internal/resolver"
)

// MarkerBook is one available book inside a map popup.
type MarkerBook struct {
	Author    string `json:"author"`
	Title     string `json:"title"`
	RecordURL string `json:"recordUrl"`
	Copies    int    `json:"copies"`
}

// Marker is one library on the map.
type Marker struct {
	Name    string       `json:"name"`
	Address string       `json:"address"`
	Lat     float64      `json:"lat"`
	Lon     float64      `json:"lon"`
	Color   string       `json:"color"`
	Books   []MarkerBook `json:"books"`
}

// markerColor grades a library by how many wanted books it has on the shelf.
func markerColor(books int) string {
	switch {
	case books == 1:
		return "red"
	case books <= 3:
		return "orange"
	case books <= 7:
		return "beige"
	default:
		return "green"
	}
}

// BuildMarkers groups available copies by library and attaches coordinates.
// Libraries the geocoder could not place are left off the map; the terminal
// summary still reports their copies.
func BuildMarkers(summary *resolver.Summary, coords map[string]geocode.Result) []Marker {
	books := make(map[string][]MarkerBook)
	for _, result := range summary.Results {
		for key, copies := range result.Available {
			if copies == 0 {
				continue
			}
			books[key] = append(books[key], MarkerBook{
				Author:    result.Entry.Author,
				Title:     result.Entry.Title,
				RecordURL: result.RecordURL,
				Copies:    copies,
			})
		}
	}

	var markers []Marker
	for key, list := range books {
		coord, ok := coords[key]
		if !ok || !coord.Found {
			continue
		}
		place := summary.Places[key]

		sort.Slice(list, func(i, j int) bool {
			a, b := sortKey(list[i].Author), sortKey(list[j].Author)
			if a != b {
				return a < b
			}
			return list[i].Title < list[j].Title
		})

		markers = append(markers, Marker{
			Name:    place.Name,
			Address: place.Address,
			Lat:     coord.Lat,
			Lon:     coord.Lon,
			Color:   markerColor(len(list)),
			Books:   list,
		})
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].Name < markers[j].Name })
	return markers
}

// sortKey orders authors by folded surname so transliterated spellings of
// the same name sort together.
func sortKey(author string) string {
	surname := match.Surname(author)
	if folded := match.FoldName(surname); folded != "" {
		return folded + "|" + surname
	}
	return surname
}

// WriteMap renders the Leaflet map to an HTML file.
func WriteMap(path string, markers []Marker) error {
	payload, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("failed to encode markers: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer func() { _ = out.Close() }()

	data := struct {
		Markers template.JS
	}{Markers: template.JS(payload)}

	if err := mapTemplate.Execute(out, data); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Library availability</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body { height: 100%; margin: 0; }
  #map { height: 100%; }
  #panel {
    position: absolute; top: 10px; right: 10px; z-index: 1000;
    background: rgba(255, 255, 255, 0.95); padding: 8px 12px;
    max-height: 80%; overflow-y: auto; font: 13px/1.5 sans-serif;
    border-radius: 4px; box-shadow: 0 1px 4px rgba(0,0,0,0.3);
  }
  .popup-books { margin: 4px 0 0; padding-left: 18px; }
</style>
</head>
<body>
<div id="map"></div>
<div id="panel"><strong>Libraries</strong><div id="panel-list"></div></div>
<script>
var libraries = {{.Markers}};

var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var bounds = [];
var panelList = document.getElementById('panel-list');

libraries.forEach(function (lib, i) {
  var marker = L.circleMarker([lib.lat, lib.lon], {
    radius: 9, color: lib.color, fillColor: lib.color, fillOpacity: 0.8
  }).addTo(map);
  bounds.push([lib.lat, lib.lon]);

  var popup = document.createElement('div');
  var head = document.createElement('strong');
  head.textContent = lib.name;
  popup.appendChild(head);
  var addr = document.createElement('div');
  addr.textContent = lib.address;
  popup.appendChild(addr);
  var ul = document.createElement('ul');
  ul.className = 'popup-books';
  lib.books.forEach(function (book) {
    var li = document.createElement('li');
    var a = document.createElement('a');
    a.href = book.recordUrl;
    a.target = '_blank';
    a.textContent = book.author + ': ' + book.title;
    li.appendChild(a);
    if (book.copies > 1) {
      li.appendChild(document.createTextNode(' (' + book.copies + ')'));
    }
    ul.appendChild(li);
  });
  popup.appendChild(ul);
  marker.bindPopup(popup);

  var row = document.createElement('div');
  var link = document.createElement('a');
  link.href = '#';
  link.id = 'lib-' + i;
  link.textContent = lib.name + ' (' + lib.books.length + ')';
  link.addEventListener('click', function (e) {
    e.preventDefault();
    map.setView([lib.lat, lib.lon], 15);
    marker.openPopup();
  });
  row.appendChild(link);
  panelList.appendChild(row);
});

if (bounds.length > 0) {
  map.fitBounds(bounds, { padding: [40, 40] });
} else {
  map.setView([59.437, 24.754], 12);
}
</script>
</body>
</html>
`))
