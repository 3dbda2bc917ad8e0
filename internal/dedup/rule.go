// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import "github.com/pdiddy/merge-engine/pkg/types"

// IsDuplicate applies the pairwise rule to a and b.
//
// When UIDs are enabled and both records carry one, UID equality is the
// whole answer. Otherwise the first applicable row of this table decides:
//
//	name and email enabled, both match  -> duplicate
//	name and phone enabled, both match  -> duplicate
//	name is the only enabled signal     -> name match
//	email enabled, name disabled        -> email match
//	anything else                       -> not a duplicate
//
// With name disabled, phone never contributes on its own, even alongside
// email.
func IsDuplicate(a, b types.ComparableRecord, cfg Config) bool {
	if cfg.UseUID && a.HasUID() && b.HasUID() {
		return *a.UID == *b.UID
	}

	nameMatch := cfg.UseName && NormalizeText(a.DisplayName) == NormalizeText(b.DisplayName)
	emailMatch := cfg.UseEmail && intersects(emailSet(a.Emails), emailSet(b.Emails))
	phoneMatch := cfg.UsePhone && phonesIntersect(a.Phones, b.Phones)

	switch {
	case cfg.UseName && cfg.UseEmail && nameMatch && emailMatch:
		return true
	case cfg.UseName && cfg.UsePhone && nameMatch && phoneMatch:
		return true
	case cfg.UseName && !cfg.UseEmail && !cfg.UsePhone:
		return nameMatch
	case cfg.UseEmail && !cfg.UseName:
		return emailMatch
	default:
		return false
	}
}
