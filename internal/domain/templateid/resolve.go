package templateid

import (
	"time"
)

// Match describes how a (root, extension) pair was mapped to a template.
type Match int

const (
	// MatchNone means the root is not in the catalog.
	MatchNone Match = iota
	// MatchExact means the (root, extension) pair is a catalog entry.
	MatchExact
	// MatchDefault means the root's extension-less entry was used.
	MatchDefault
	// MatchForward means the extension postdates every known version and the
	// newest version was selected.
	MatchForward
	// MatchFloor means the extension falls between known versions and the
	// newest version not newer than it was selected.
	MatchFloor
	// MatchUnknownExtension means the root is known but the extension could
	// not be placed: it is missing, not a date, or older than every version.
	MatchUnknownExtension
)

func (m Match) String() string {
	switch m {
	case MatchNone:
		return "none"
	case MatchExact:
		return "exact"
	case MatchDefault:
		return "default"
	case MatchForward:
		return "forward"
	case MatchFloor:
		return "floor"
	case MatchUnknownExtension:
		return "unknown_extension"
	default:
		return "invalid"
	}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Root      string
	Extension string
	ID        TemplateID
	Match     Match
	// Latest is the newest version for a known root. Callers that accept
	// lenient fallback use it when Match is MatchUnknownExtension.
	Latest TemplateID
}

// Matched reports whether the resolution selected a template.
func (r Resolution) Matched() bool {
	return r.ID != Unmatched
}

// Fallback reports whether a template was selected without an exact or
// default match.
func (r Resolution) Fallback() bool {
	return r.Match == MatchForward || r.Match == MatchFloor
}

const extensionLayout = "2006-01-02"

// Resolve maps a templateId declaration to a catalog entry.
//
// An exact (root, extension) match wins. Failing that, the root's default
// entry is used if it has one. Otherwise a date extension selects the newest
// version released on or before that date, which for dates past every known
// version is the newest version overall. Anything else leaves the template
// unmatched and reports whether the root itself was recognized.
func Resolve(root, extension string) Resolution {
	res := Resolution{Root: root, Extension: extension}

	if id, ok := byKey[key{root, extension}]; ok {
		res.ID, res.Match, res.Latest = id, MatchExact, latestOf(root)
		return res
	}

	entries := byRoot[root]
	if len(entries) == 0 {
		return res
	}
	res.Latest = entries[len(entries)-1].ID

	for _, e := range entries {
		if e.Extension == "" {
			res.ID, res.Match = e.ID, MatchDefault
			return res
		}
	}

	if _, err := time.Parse(extensionLayout, extension); err != nil {
		res.Match = MatchUnknownExtension
		return res
	}

	newest := entries[len(entries)-1]
	if extension > newest.Extension {
		res.ID, res.Match = newest.ID, MatchForward
		return res
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Extension <= extension {
			res.ID, res.Match = entries[i].ID, MatchFloor
			return res
		}
	}

	res.Match = MatchUnknownExtension
	return res
}

func latestOf(root string) TemplateID {
	id, _ := Latest(root)
	return id
}
