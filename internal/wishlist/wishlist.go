// Package wishlist loads the books a reader wants: from a Goodreads library
// export CSV, by scraping a public shelf, or by driving the export through a
// browser when only credentials are at hand.
package wishlist

// Entry is one wanted book. ISBN holds the 13-digit form when the source
// provided one, otherwise "".
type Entry struct {
	Author string
	Title  string
	ISBN   string
}
