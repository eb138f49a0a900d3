package price

// Range is a pair of optional inclusive price bounds.
// A nil bound means the side is unconstrained.
type Range struct {
	Min *float64
	Max *float64
}

// TightenMin folds a candidate lower bound into the range,
// keeping the stricter (larger) of the two.
func (r *Range) TightenMin(v float64) {
	if r.Min == nil || v > *r.Min {
		r.Min = &v
	}
}

// TightenMax folds a candidate upper bound into the range,
// keeping the stricter (smaller) of the two.
func (r *Range) TightenMax(v float64) {
	if r.Max == nil || v < *r.Max {
		r.Max = &v
	}
}

// Tighten applies a two-sided update (lo, hi) via the tightening rule.
func (r *Range) Tighten(lo, hi float64) {
	r.TightenMin(lo)
	r.TightenMax(hi)
}

// IsZero reports whether both sides are unconstrained.
func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// normalize swaps inverted bounds so Min <= Max whenever both are set.
// Individual phrases never produce an inverted pair (interval numbers
// are sorted first), but independent one-sided phrases can.
func (r *Range) normalize() {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
}
