// pkg/module/kwargs.go
package module

import "github.com/spf13/cast"

// Kwargs is the open constructor-parameter set a module is built from: every
// declared Kwarg name resolved to its supplied or default value, plus any
// undeclared names passed through verbatim for consumers further down the
// pipeline.
type Kwargs map[string]any

// Has reports whether a parameter was supplied or defaulted.
func (k Kwargs) Has(name string) bool {
	_, ok := k[name]
	return ok
}

// Value returns the raw parameter value.
func (k Kwargs) Value(name string) (any, bool) {
	v, ok := k[name]
	return v, ok
}

// Bool returns the parameter coerced to bool, false when absent.
func (k Kwargs) Bool(name string) bool {
	return cast.ToBool(k[name])
}

// Int returns the parameter coerced to int64, zero when absent.
func (k Kwargs) Int(name string) int64 {
	return cast.ToInt64(k[name])
}

// Float returns the parameter coerced to float64, zero when absent.
func (k Kwargs) Float(name string) float64 {
	return cast.ToFloat64(k[name])
}

// String returns the parameter coerced to a string, empty when absent.
func (k Kwargs) String(name string) string {
	return cast.ToString(k[name])
}

// Strings returns the parameter coerced to a string slice, nil when absent.
func (k Kwargs) Strings(name string) []string {
	if _, ok := k[name]; !ok {
		return nil
	}
	return cast.ToStringSlice(k[name])
}

// clone returns a shallow copy so callers can hand out kwargs without
// sharing the backing map.
func (k Kwargs) clone() Kwargs {
	out := make(Kwargs, len(k))
	for name, v := range k {
		out[name] = v
	}
	return out
}
