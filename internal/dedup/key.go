// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"

	"github.com/pdiddy/merge-engine/pkg/types"
)

const (
	uidKeyPrefix = "uid:"
	idKeyPrefix  = "id:"
	keySeparator = "|"
)

// Key returns the bucket key for r under cfg. Records with different keys
// are never compared; records sharing a key are only candidates and still
// go through IsDuplicate.
//
// The UID is used raw when enabled and present. Otherwise the key joins the
// normalized display name and the normalized primary email, each enabled
// part taking its slot even when empty, so a nameless record keyed
// "|x@y.com" never collides with a record named "x@y.com". When every
// enabled part is empty the key falls back to the record ID so records
// without signals never share a bucket.
func Key(r types.ComparableRecord, cfg Config) string {
	if cfg.UseUID && r.HasUID() {
		return uidKeyPrefix + *r.UID
	}

	parts := make([]string, 0, 2)
	if cfg.UseName {
		parts = append(parts, NormalizeText(r.DisplayName))
	}
	if cfg.UseEmail {
		parts = append(parts, primaryEmail(r))
	}

	if strings.Join(parts, "") == "" {
		return idKeyPrefix + r.ID
	}
	return strings.Join(parts, keySeparator)
}

// primaryEmail returns the normalized first email of r, or "".
func primaryEmail(r types.ComparableRecord) string {
	if len(r.Emails) == 0 {
		return ""
	}
	return NormalizeText(r.Emails[0].Address)
}
