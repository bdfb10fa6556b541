package cart

import "fmt"

// ValidationError reports invalid input to a constructor (missing identifier,
// non-numeric price, out-of-bounds coupon value, and so on).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CouponError reports a failed coupon eligibility check. Reason carries the
// message of the first predicate that failed.
type CouponError struct {
	Reason string
}

func (e *CouponError) Error() string { return e.Reason }

// UnknownRowError reports a rowID that is not present in the cart.
type UnknownRowError struct {
	RowID string
}

func (e *UnknownRowError) Error() string {
	return fmt.Sprintf("the cart does not contain rowId %s", e.RowID)
}

// UnknownModelError reports an association with a model kind the resolver
// does not know about.
type UnknownModelError struct {
	Kind string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("the supplied model %s does not exist", e.Kind)
}

// ConfigError reports an invalid pricing configuration detected at use time.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// UnknownMetricError reports a metric name outside the WithInstance whitelist.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown cart metric %q", e.Metric)
}
