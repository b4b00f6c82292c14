// Package utils holds small helpers shared by the transport and storage
// layers.
package utils

import "strconv"

// Page is a 1-based window over an ordered listing.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads raw page and page_size values. Missing or malformed input
// falls back to page 1 and defSize; Number is at least 1 and Size is clamped
// to [1, maxSize].
func ParsePage(page, size string, defSize, maxSize int) Page {
	return Page{
		Number: max(atoiDefault(page, 1), 1),
		Size:   min(max(atoiDefault(size, defSize), 1), maxSize),
	}
}

// Offset is the number of rows to skip before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages reports how many pages of size hold total rows.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
