// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// NormalizeText lower-cases s, trims it and collapses internal whitespace
// runs to a single space. Names and emails go through it before every
// comparison and before key generation.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizePhone keeps only the ASCII digits of s, dropping spaces,
// dashes, parentheses and plus signs.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// A number may omit only a leading country code of at most
// maxCountryCodeDigits, and the remaining national number must carry at
// least minNationalDigits.
const (
	maxCountryCodeDigits = 3
	minNationalDigits    = 9
)

// samePhone reports whether two normalized numbers denote the same line.
// Besides exact equality, a number written with a country prefix matches
// the same number written without it: "15551234567" matches "5551234567".
// A local number such as "5551234" never matches a longer number.
func samePhone(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	extra := len(a) - len(b)
	return extra <= maxCountryCodeDigits &&
		len(b) >= minNationalDigits &&
		strings.HasSuffix(a, b)
}

// emailSet returns the normalized, non-empty addresses of emails.
func emailSet(emails []types.Email) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if n := NormalizeText(e.Address); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// phoneDigits returns the digit-normalized, non-empty numbers of phones.
func phoneDigits(phones []types.Phone) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if n := NormalizePhone(p.Number); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// phonesIntersect reports whether any number in a denotes the same line as
// any number in b.
func phonesIntersect(a, b []types.Phone) bool {
	bs := phoneDigits(b)
	for _, x := range phoneDigits(a) {
		for _, y := range bs {
			if samePhone(x, y) {
				return true
			}
		}
	}
	return false
}

// intersects reports whether a and b share at least one element.
func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
