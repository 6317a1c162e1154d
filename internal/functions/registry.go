// Package functions maps portable EQL function names to their
// backend-specific SQL spellings. The registry is consulted only by the
// translator; parsing never depends on it.
package functions

import "strings"

// defaultKey is the mandatory fallback entry in every mapping table.
const defaultKey = "default"

// Registry is a case-insensitive lookup from portable function name to
// a per-dialect spelling table. It is immutable after construction and
// safe for concurrent reads.
type Registry struct {
	mappings map[string]map[string]string
}

// New creates a registry pre-populated with the built-in aggregate,
// string, and date functions.
func New() *Registry {
	r := &Registry{mappings: make(map[string]map[string]string)}

	// Aggregates are spelled identically across dialects.
	for _, name := range []string{"COUNT", "SUM", "AVG", "MIN", "MAX"} {
		r.register(name, map[string]string{defaultKey: name})
	}

	// String functions.
	for _, name := range []string{"UPPER", "LOWER", "TRIM", "CONCAT"} {
		r.register(name, map[string]string{defaultKey: name})
	}
	r.register("LENGTH", map[string]string{
		defaultKey:  "LENGTH",
		"SqlServer": "LEN",
	})
	r.register("SUBSTRING", map[string]string{
		defaultKey: "SUBSTRING",
		"Sqlite":   "SUBSTR",
	})

	// Date part extractors.
	for _, name := range []string{"YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"} {
		r.register(name, map[string]string{defaultKey: name})
	}
	r.register("NOW", map[string]string{
		defaultKey:  "CURRENT_TIMESTAMP",
		"SqlServer": "GETDATE",
		"Postgres":  "NOW",
		"MySql":     "NOW",
	})

	return r
}

func (r *Registry) register(name string, table map[string]string) {
	r.mappings[strings.ToUpper(name)] = table
}

// IsRegistered reports whether the portable name has a mapping table.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.mappings[strings.ToUpper(name)]
	return ok
}

// Resolve returns the dialect spelling for a portable function name.
// Resolution order: exact dialect entry, then the "default" entry, then
// the original name verbatim. Unregistered functions pass through
// unchanged so backend-specific functions keep working without registry
// updates.
func (r *Registry) Resolve(name, dialect string) string {
	table, ok := r.mappings[strings.ToUpper(name)]
	if !ok {
		return name
	}
	if spelling, ok := table[dialect]; ok {
		return spelling
	}
	if spelling, ok := table[defaultKey]; ok {
		return spelling
	}
	return name
}
