package cmds

import (
	"fmt"
	"reflect"
)

// Command is a word of the command line. Func consumes the words after it as arguments, Subs become words after it.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
	// ArgNames name the arguments of Func in usage.
	ArgNames []string
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

// Args names the arguments in usage, like "<file>".
func (c *Command) Args(names ...string) *Command {
	c.ArgNames = append(c.ArgNames, names...)
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

// Func wraps fn as a command. Arguments of fn are consumed from the following words.
// fn may return an error, which stops the execution.
func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}

	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		panic(fmt.Errorf("variadic function not supported: %v", fnType))
	}
	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) != errorType {
			panic(fmt.Errorf("must return error: %v", fnType))
		}
	default:
		panic(fmt.Errorf("must return 0 or 1 value: %v", fnType))
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
