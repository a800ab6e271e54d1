// Package filter defines equality filters over procedure metadata.
package filter

import "fmt"

// MaxConditions is the maximum number of conditions per filter.
const MaxConditions = 8

// Filter is a conjunction of exact-match conditions on metadata fields.
// AND semantics: a record must satisfy every condition.
type Filter struct {
	conditions []Condition
}

// New validates and creates a Filter.
func New(conditions ...Condition) (Filter, error) {
	if len(conditions) > MaxConditions {
		return Filter{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Filter{conditions: conditions}, nil
}

// Conditions returns the equality conditions.
func (f Filter) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// Condition is a single exact-match clause on a metadata field.
type Condition struct {
	field string
	value string
}

// NewCondition creates an exact-match condition.
func NewCondition(field, value string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("filter value is required for field %q", field)
	}
	return Condition{field: field, value: value}, nil
}

// Field returns the metadata field name.
func (c Condition) Field() string { return c.field }

// Value returns the exact-match value.
func (c Condition) Value() string { return c.value }
