package vars

import "cmp"

// FirstNonZero picks a setting by precedence: flag, then config, then default.
func FirstNonZero[T comparable](values ...T) T {
	return cmp.Or(values...)
}
