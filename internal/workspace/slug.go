package workspace

import (
	"regexp"
	"strconv"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and collapses every run of characters outside [a-z0-9] to "-".
func Slugify(title string) string {
	return nonSlug.ReplaceAllString(strings.ToLower(title), "-")
}

// uniqueSlug appends -2, -3, ... until the id is not taken.
func uniqueSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if !taken(id) {
			return id
		}
	}
}

// Move removes the element at from and inserts it at to, where to indexes the
// shortened list. It returns a new slice; the input is not modified.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out
}
