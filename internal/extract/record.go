package extract

import "sort"

// Record holds extracted values keyed by qualified field name.
type Record map[string][]string

// Add appends a value to a field.
func (r Record) Add(field, value string) {
	r[field] = append(r[field], value)
}

// Get returns the first value of a field, or "".
func (r Record) Get(field string) string {
	if v := r[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns every value of a field.
func (r Record) Values(field string) []string {
	return r[field]
}

// Has reports whether the field has at least one value.
func (r Record) Has(field string) bool {
	return len(r[field]) > 0
}

// Merge appends every value of other into r.
func (r Record) Merge(other Record) {
	for k, vs := range other {
		r[k] = append(r[k], vs...)
	}
}

// Fields returns the field names in sorted order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
