package bitbuf

// Option is a nullable field. On the wire it is one presence bit, written
// with the message's other flags, and a body written after the flags are
// flushed.
type Option[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// WritePresence writes the presence bit of o.
func WritePresence[T any](w *Writer, o Option[T]) {
	w.WriteBit(o.Valid)
}

// WriteOptional writes the body of o with write when o is present.
func WriteOptional[T any](w *Writer, o Option[T], write func(*Writer, T)) {
	if !o.Valid {
		return
	}
	write(w, o.Value)
}

// ReadPresence reads the presence bit into o and clears any stale value.
func ReadPresence[T any](r *Reader, o *Option[T]) error {
	ok, err := r.HasBit()
	if err != nil {
		return err
	}
	var zero T
	o.Value = zero
	o.Valid = ok
	return nil
}

// ReadOptional reads the body of o with read when its presence bit was set.
func ReadOptional[T any](r *Reader, o *Option[T], read func(*Reader) (T, error)) error {
	if !o.Valid {
		return nil
	}
	v, err := read(r)
	if err != nil {
		return err
	}
	o.Value = v
	return nil
}
