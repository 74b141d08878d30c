// Package folderpath splits and joins the slash-delimited folder paths the
// OVA backend reports.
//
// Parsing is tolerant: leading, trailing, and repeated slashes produce empty
// segments, which are dropped rather than rejected.
package folderpath

import "strings"

// Separator is the folder path delimiter used by the backend.
const Separator = "/"

// Split returns the non-empty segments of p.
func Split(p string) []string {
	raw := strings.Split(p, Separator)
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Join joins segments with the separator.
func Join(segs ...string) string {
	return strings.Join(segs, Separator)
}

// Child returns the path of a child named name under parent. The root's
// children have a path equal to their name.
func Child(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Separator + name
}

// Clean normalizes p by dropping empty segments, so "/movies//comedy/"
// becomes "movies/comedy".
func Clean(p string) string {
	return Join(Split(p)...)
}

// Crumb is one step of a breadcrumb trail.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Breadcrumbs returns one crumb per segment of p, each carrying the
// cumulative path up to and including that segment.
func Breadcrumbs(p string) []Crumb {
	segs := Split(p)
	crumbs := make([]Crumb, 0, len(segs))
	cur := ""
	for _, s := range segs {
		cur = Child(cur, s)
		crumbs = append(crumbs, Crumb{Name: s, Path: cur})
	}
	return crumbs
}
