package domain

// Optional distinguishes an absent value from an explicitly set zero value
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Or returns the value when set, fallback otherwise
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}
