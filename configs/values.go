package configs

import (
	"errors"
	"fmt"
	"iter"
)

// Lookup decodes the first value at path. ok is false when no document sets it.
func Lookup[T any](loader Loader, path string) (value T, ok bool, err error) {
	if err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("config %s: %w", path, err)
	}
	return value, true, nil
}

// First is Lookup giving the zero value when missing. Malformed configs panic, since providers have no error return.
func First[T any](loader Loader, path string) T {
	value, _, err := Lookup[T](loader, path)
	if err != nil {
		panic(err)
	}
	return value
}

// All yields the values at path in every document, most specific first.
func All[T any](loader Loader, path string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for value, err := range loader.IterCueValues(path) {
			if err != nil {
				panic(fmt.Errorf("config %s: %w", path, err))
			}
			var v T
			if err := value.Decode(&v); err != nil {
				panic(fmt.Errorf("config %s: %w", path, err))
			}
			if !yield(v) {
				return
			}
		}
	}
}
