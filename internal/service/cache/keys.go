package cache

import (
	"sort"
	"strings"
)

// RequestKey canonicalizes a request signature so that semantically identical
// requests hit the same entry regardless of argument ordering: asset ids are
// sorted and deduplicated, currency and flags are lowercased.
func RequestKey(assetIDs []string, currency string, flags ...string) string {
	ids := make([]string, 0, len(assetIDs))
	seen := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := []string{"snapshots", strings.Join(ids, ","), strings.ToLower(currency)}
	if len(flags) > 0 {
		fs := make([]string, len(flags))
		for i, f := range flags {
			fs[i] = strings.ToLower(f)
		}
		sort.Strings(fs)
		parts = append(parts, strings.Join(fs, ","))
	}
	return strings.Join(parts, ":")
}
