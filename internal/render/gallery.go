package render

import (
	"fmt"
	"html/template"
	"os"
	"sort"
)

// GalleryItem is one cover tile: the book, its catalog record and the cover
// image (a URL or a data: URI).
type GalleryItem struct {
	Author    string
	Title     string
	RecordURL string
	CoverURL  string
}

// WriteGallery renders a cover grid to an HTML file, ordered by folded
// surname then title.
func WriteGallery(path string, items []GalleryItem) error {
	sorted := make([]GalleryItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sortKey(sorted[i].Author), sortKey(sorted[j].Author)
		if a != b {
			return a < b
		}
		return sorted[i].Title < sorted[j].Title
	})

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gallery file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := galleryTemplate.Execute(out, sorted); err != nil {
		return fmt.Errorf("failed to render gallery: %w", err)
	}
	return nil
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Covers</title>
<style>
  body { font: 14px/1.4 sans-serif; margin: 16px; }
  .grid { display: flex; flex-wrap: wrap; gap: 16px; }
  figure { margin: 0; width: 200px; }
  figure img { width: 100%; border-radius: 3px; box-shadow: 0 1px 4px rgba(0,0,0,0.3); }
  figcaption { margin-top: 4px; }
</style>
</head>
<body>
<div class="grid">
{{range .}}<figure>
  <a href="{{.RecordURL}}" target="_blank"><img src="{{.CoverURL}}" alt="{{.Title}}" loading="lazy"></a>
  <figcaption>{{.Author}}<br><em>{{.Title}}</em></figcaption>
</figure>
{{end}}</div>
</body>
</html>
`))
