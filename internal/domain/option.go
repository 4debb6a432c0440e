package domain

// Option marks a dataset slot as present or absent. The zero value is absent.
type Option[T any] struct {
	value   T
	present bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// OptionFromPtr treats nil as absent.
func OptionFromPtr[T any](value *T) Option[T] {
	if value == nil {
		return None[T]()
	}
	return Some(*value)
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Option[T]) IsPresent() bool {
	return o.present
}
