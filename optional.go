package rigel

// Optional is a value that may be absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// IsPresent reports whether a value is present.
func (o Optional[T]) IsPresent() bool { return o.ok }

// OrElse returns the value if present, otherwise v.
func (o Optional[T]) OrElse(v T) T {
	if o.ok {
		return o.value
	}
	return v
}

// MustGet returns the value or panics if absent.
func (o Optional[T]) MustGet() T {
	if !o.ok {
		panic("rigel: MustGet on absent Optional")
	}
	return o.value
}
