package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/symbook/server"
)

type Module struct {
	dscope.Module
	Server server.Module
}
