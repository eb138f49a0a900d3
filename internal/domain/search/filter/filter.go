// Package filter models the structured pre-filter applied alongside
// vector similarity ranking: a conjunction of field-level conditions.
package filter

// Expression is a conjunction of conditions; every condition must hold.
type Expression struct {
	conditions []Condition
}

// And creates an Expression from the given conditions.
func And(conditions ...Condition) Expression {
	return Expression{conditions: conditions}
}

// Conditions returns the conjunction members.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition is a single filter clause: either an exact tag match or an
// inclusive numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// Match creates an exact tag match condition.
func Match(key, value string) Condition {
	return Condition{key: key, match: value}
}

// NumericRange creates an inclusive numeric range condition. A nil
// boundary leaves that side unconstrained.
func NumericRange(key string, gte, lte *float64) Condition {
	return Condition{key: key, rangeExpr: &Range{gte: gte, lte: lte}}
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is an inclusive numeric range. Both boundaries are optional.
type Range struct {
	gte *float64
	lte *float64
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
