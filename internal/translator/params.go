package translator

// ParamSet is the ordered named-parameter accumulation of one translated
// query. Each distinct logical name has exactly one entry regardless of
// how many times it occurs in the query text; the per-occurrence
// sequence is kept separately for dialects whose placeholders are purely
// positional (?).
type ParamSet struct {
	names       []string // distinct names in first-occurrence order
	values      map[string]any
	occurrences []string // every occurrence, in emission order
}

// NewParamSet creates an empty parameter set.
func NewParamSet() *ParamSet {
	return &ParamSet{values: make(map[string]any)}
}

// Add records an occurrence of the named parameter and returns the
// 1-based ordinal of its first occurrence. A repeated name reuses the
// existing binding.
func (ps *ParamSet) Add(name string, value any) int {
	ps.occurrences = append(ps.occurrences, name)
	for i, n := range ps.names {
		if n == name {
			return i + 1
		}
	}
	ps.names = append(ps.names, name)
	ps.values[name] = value
	return len(ps.names)
}

// Names returns the distinct parameter names in first-occurrence order.
func (ps *ParamSet) Names() []string {
	return ps.names
}

// Get returns the bound value for a name.
func (ps *ParamSet) Get(name string) (any, bool) {
	v, ok := ps.values[name]
	return v, ok
}

// Values returns the bound values in first-occurrence order.
func (ps *ParamSet) Values() []any {
	out := make([]any, len(ps.names))
	for i, n := range ps.names {
		out[i] = ps.values[n]
	}
	return out
}

// Occurrences returns every parameter occurrence in emission order,
// including repeats. Positional (?) dialects need one argument per
// occurrence.
func (ps *ParamSet) Occurrences() []string {
	return ps.occurrences
}

// OccurrenceValues returns the bound values in occurrence order.
func (ps *ParamSet) OccurrenceValues() []any {
	out := make([]any, len(ps.occurrences))
	for i, n := range ps.occurrences {
		out[i] = ps.values[n]
	}
	return out
}

// Len returns the number of distinct parameters.
func (ps *ParamSet) Len() int {
	return len(ps.names)
}

// Map returns a copy of the name-to-value bindings.
func (ps *ParamSet) Map() map[string]any {
	out := make(map[string]any, len(ps.values))
	for k, v := range ps.values {
		out[k] = v
	}
	return out
}
