package bookconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/symbook/configs"
	"github.com/reusee/symbook/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
