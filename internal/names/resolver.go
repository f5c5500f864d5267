// Package names resolves system ids to human-readable names. The
// systems table varies across rdio-scanner versions, so the display
// column is probed rather than assumed.
package names

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// SystemDirectory is the slice of the event store the resolver needs.
type SystemDirectory interface {
	SystemColumns(ctx context.Context) ([]string, error)
	SystemNames(ctx context.Context, nameColumn string) (map[int64]string, error)
}

// nameColumns are probed in priority order; the first present wins.
var nameColumns = []string{"name", "label", "shortName", "short_name"}

// Resolver maps system ids to display names. The lookup table is built
// once per process; staleness of minutes is acceptable for this data.
type Resolver struct {
	dir SystemDirectory
	log zerolog.Logger

	once  sync.Once
	table map[int64]string
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(dir SystemDirectory, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// Resolve returns the display name for a system id, synthesizing
// "System <id>" when no mapping exists. Directory failures degrade to
// the fallback; they never surface to the caller.
func (r *Resolver) Resolve(ctx context.Context, systemID int64) string {
	r.once.Do(func() {
		r.table = r.load(ctx)
	})
	if name, ok := r.table[systemID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("System %d", systemID)
}

func (r *Resolver) load(ctx context.Context) map[int64]string {
	columns, err := r.dir.SystemColumns(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("system table introspection failed, synthesizing system names")
		return map[int64]string{}
	}

	column, ok := detectNameColumn(columns)
	if !ok {
		r.log.Warn().Strs("columns", columns).Msg("no usable name column on systems table")
		return map[int64]string{}
	}

	table, err := r.dir.SystemNames(ctx, column)
	if err != nil {
		r.log.Warn().Err(err).Str("column", column).Msg("system name query failed, synthesizing system names")
		return map[int64]string{}
	}

	r.log.Debug().Str("column", column).Int("systems", len(table)).Msg("system name table loaded")
	return table
}

// detectNameColumn picks the first candidate present among the
// available columns.
func detectNameColumn(available []string) (string, bool) {
	present := make(map[string]bool, len(available))
	for _, c := range available {
		present[c] = true
	}
	for _, candidate := range nameColumns {
		if present[candidate] {
			return candidate, true
		}
	}
	return "", false
}
