package cmds

// GlobalExecutor holds the commands defined by package-level Var, Switch and Collect calls.
var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute runs args against the global executor and panics on error.
func Execute(args []string) {
	GlobalExecutor.MustExecute(args)
}
