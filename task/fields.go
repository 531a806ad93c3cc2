package task

// Field names a logical task property. User vaults can store each logical
// field under a different physical frontmatter key; the mapping is resolved
// through one indirection table built once, never inferred per access.
type Field string

const (
	FieldTitle          Field = "title"
	FieldStatus         Field = "status"
	FieldRecurrence     Field = "recurrence"
	FieldCompletedDates Field = "completedDates"
	FieldScheduled      Field = "scheduled"
	FieldDue            Field = "due"
	FieldArchived       Field = "archived"
)

var defaultKeys = map[Field]string{
	FieldTitle:          "title",
	FieldStatus:         "status",
	FieldRecurrence:     "recurrence",
	FieldCompletedDates: "completedDates",
	FieldScheduled:      "scheduled",
	FieldDue:            "due",
	FieldArchived:       "archived",
}

// FieldMapping resolves logical fields to physical frontmatter keys.
type FieldMapping struct {
	keys map[Field]string
}

// DefaultFieldMapping maps every logical field to its own name.
func DefaultFieldMapping() FieldMapping {
	return NewFieldMapping(nil)
}

// NewFieldMapping builds a mapping with the given key overrides; fields
// without an override keep their default key.
func NewFieldMapping(overrides map[Field]string) FieldMapping {
	keys := make(map[Field]string, len(defaultKeys))
	for f, k := range defaultKeys {
		keys[f] = k
	}
	for f, k := range overrides {
		if k != "" {
			keys[f] = k
		}
	}
	return FieldMapping{keys: keys}
}

// Key returns the physical frontmatter key for a logical field.
func (m FieldMapping) Key(f Field) string {
	if m.keys == nil {
		return defaultKeys[f]
	}
	return m.keys[f]
}
