// Package navigation resolves deck locations (slide index or slug plus a
// reveal step) into navigation state, and implements next/previous stepping.
package navigation

import (
	"errors"
	"strconv"
	"strings"
)

// LocationKind tells how a Location addresses a slide.
type LocationKind int

const (
	// LocationAbsent addresses the first slide.
	LocationAbsent LocationKind = iota
	// LocationNumber addresses a slide by 1-based position.
	LocationNumber
	// LocationSlug addresses a slide by slug.
	LocationSlug
)

// Location is a parsed location descriptor.
type Location struct {
	Kind   LocationKind
	Number int
	Slug   string
}

// AtIndex returns a numeric location.
func AtIndex(n int) Location {
	return Location{Kind: LocationNumber, Number: n}
}

// AtSlug returns a slug location.
func AtSlug(slug string) Location {
	return Location{Kind: LocationSlug, Slug: slug}
}

// ParseLocation normalises a raw location segment (for example the last
// path element of a deck URL). Empty input is absent, anything strconv.Atoi
// accepts is numeric (out-of-range magnitudes saturate and are clamped
// later), and everything else is a slug taken literally.
func ParseLocation(raw string) Location {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Location{Kind: LocationAbsent}
	}
	n, err := strconv.Atoi(trimmed)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return AtIndex(n)
	}
	return AtSlug(raw)
}

// String renders the location back into its segment form.
func (l Location) String() string {
	switch l.Kind {
	case LocationNumber:
		return strconv.Itoa(l.Number)
	case LocationSlug:
		return l.Slug
	default:
		return ""
	}
}
