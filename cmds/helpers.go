package cmds

// Var defines name as a command setting the returned value, and name+"." resetting it.
func Var[T any](name string, desc ...string) *T {
	var value T

	// set
	Define(name, withDesc(Func(func(v T) {
		value = v
	}), desc))

	// set zero
	var zero T
	Define(name+".", Func(func() {
		value = zero
	}))

	return &value
}

func Switch(name string, desc ...string) *bool {
	var value bool

	// set true
	Define(name, withDesc(Func(func() {
		value = true
	}), desc))

	// set false
	Define("!"+name, Func(func() {
		value = false
	}))

	return &value
}

func Collect[T any](name string, desc ...string) *[]T {
	var value []T
	// append
	Define(name, withDesc(Func(func(v T) {
		value = append(value, v)
	}), desc))
	return &value
}

func withDesc(cmd *Command, desc []string) *Command {
	if len(desc) > 0 {
		cmd.Desc(desc[0])
	}
	return cmd
}
