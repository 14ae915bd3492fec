package ester

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type epikItem struct {
	LibraryNameEst string `json:"libraryNameEst"`
	LibraryName    string `json:"libraryName"`
	StatusEst      string `json:"statusEst"`
	Status         string `json:"status"`
}

// ItemsByCode asks the JSON backend for the copies of one bib id. Errors
// degrade to an empty list, this is the last tier of the holdings chain and
// there is nothing left to fall back to.
func (c *Catalog) ItemsByCode(ctx context.Context, bib string) []Holding {
	var payload []struct {
		Items []epikItem `json:"items"`
	}
	url := c.epikURL + "/api/data/getItemsByCodeList"
	if err := c.fetcher.PostJSON(ctx, url, []string{bib}, &payload); err != nil {
		slog.Debug("JSON backend error", "bib", bib, "error", err)
		return nil
	}
	if len(payload) == 0 {
		return nil
	}

	var out []Holding
	for _, item := range payload[0].Items {
		loc := item.LibraryNameEst
		if loc == "" {
			loc = item.LibraryName
		}
		status := item.StatusEst
		if status == "" {
			status = item.Status
		}
		out = append(out, Holding{
			Location: StripControl(loc),
			Status:   strings.ToUpper(StripControl(status)),
		})
	}
	return out
}

// CoverImage is what the JSON backend knows about a record's jacket image.
// ImageData carries inline base64; the URL fields point at hosted variants.
type CoverImage struct {
	ImageData string `json:"imageData"`
	URLLarge  string `json:"urlLarge"`
	URLSmall  string `json:"urlSmall"`
}

// ImagesByCode fetches cover image data for one bib code.
func (c *Catalog) ImagesByCode(ctx context.Context, code string) (CoverImage, error) {
	var payload []CoverImage
	url := c.epikURL + "/api/data/getImagesByCodeList"
	if err := c.fetcher.PostJSON(ctx, url, []string{code}, &payload); err != nil {
		return CoverImage{}, err
	}
	if len(payload) == 0 {
		return CoverImage{}, fmt.Errorf("no image data for %s", code)
	}
	return payload[0], nil
}

// IIIFCoverURL is the catalog's IIIF rendition of a record's cover.
func (c *Catalog) IIIFCoverURL(code string) string {
	return fmt.Sprintf("%s/iiif/2/%s/full/500,/0/default.jpg", c.baseURL, code)
}
