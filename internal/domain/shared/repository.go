package shared

// Filter represents query filter options for list endpoints
type Filter struct {
	Visibility Visibility
	Period     *Period
	OrderBy    string
	OrderDir   string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Visibility: ActiveOnly,
		OrderBy:    "created_at",
		OrderDir:   "desc",
	}
}

// WithPeriod returns a copy of the filter restricted to p
func (f Filter) WithPeriod(p Period) Filter {
	f.Period = &p
	return f
}
