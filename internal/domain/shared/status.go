package shared

// RecordStatus is the soft-delete state shared by reference data and quotations
type RecordStatus string

const (
	StatusActive   RecordStatus = "ACTIVE"
	StatusInactive RecordStatus = "INACTIVE"
)

// IsValid checks if the status is known
func (s RecordStatus) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// IsActive reports whether the record is visible to active-only reads
func (s RecordStatus) IsActive() bool {
	return s == StatusActive
}

// String returns the string representation
func (s RecordStatus) String() string {
	return string(s)
}

// Visibility selects which records a read path returns
type Visibility int

const (
	// ActiveOnly hides INACTIVE records
	ActiveOnly Visibility = iota
	// IncludeInactive returns every record regardless of status
	IncludeInactive
)

// Admits reports whether a record with the given status passes the filter
func (v Visibility) Admits(s RecordStatus) bool {
	return v == IncludeInactive || s.IsActive()
}
