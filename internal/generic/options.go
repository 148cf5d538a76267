package generic

import "fmt"

// OptionFunc is the shape every functional-option type in this module
// satisfies (e.g. sparse.ConcatOption): a named func(*T) error so
// ApplyOptions can range over a caller's mixed slice of them.
type OptionFunc[T any] interface {
	~func(*T) error
}

// ApplyOptions runs each option against settings in order, stopping at
// the first one that errors.
func ApplyOptions[
	OT OptionFunc[T],
	T any,
](settings *T, options ...OT,
) error {
	for _, opt := range options {
		if err := opt(settings); err != nil {
			return err
		}
	}
	return nil
}

// ErrIfOptionWasSet reports an error naming the option if current has
// already diverged from its zero-value default, catching a caller
// passing the same option twice at construction time.
func ErrIfOptionWasSet[T comparable](name string, current, dflt T) error {
	if current != dflt {
		return OptionAlreadySet(name)
	}
	return nil
}

func OptionAlreadySet(name string) error {
	return fmt.Errorf("%s option provided multiple times", name)
}
