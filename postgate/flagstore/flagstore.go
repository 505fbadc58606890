// Component for durable, named flags on accounts (eg "shadowban-suspected").
//
// Flags are written by periodic sweeps and read back as advisory signals
// during posting evaluation. Unlike counters they have no time horizon; they
// stay until removed.
package flagstore

import (
	"context"
)

type FlagStore interface {
	Get(ctx context.Context, key string) ([]string, error)
	Add(ctx context.Context, key string, flags []string) error
	Remove(ctx context.Context, key string, flags []string) error
}

func dedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}
