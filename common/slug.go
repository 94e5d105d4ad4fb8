package common

import (
	"errors"
	"strings"
	"unicode"
)

var ErrEmptySlug = errors.New("slug cannot be empty")

// MaxSlugRunes bounds slugs used as file names.
const MaxSlugRunes = 60

// Slugify lowercases input and joins its letter and digit runs with hyphens.
// Non-Latin letters are kept so Chinese titles still produce a name. When
// input has nothing usable, fallback is slugified instead.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

func slugify(s string) string {
	var b strings.Builder
	n := 0
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingHyphen = n > 0
			continue
		}
		need := 1
		if pendingHyphen {
			need = 2
		}
		if n+need > MaxSlugRunes {
			break
		}
		if pendingHyphen {
			b.WriteByte('-')
			n++
			pendingHyphen = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
