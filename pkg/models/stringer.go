package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Technology
func (t Technology) String() string { return string(t) }

// Level
func (l Level) String() string { return string(l) }
