package interp

import (
	"fmt"
	"sync"
)

type Origin uint8

const (
	OriginUnknown Origin = iota
	OriginUser
	OriginPrelude
)

const preludeFile = "<prelude>"

// origins tags parsed file names, so trace frames can be attributed to user code.
type origins struct {
	sync.Mutex
	serial int
	names  map[string]Origin
}

func newOrigins() *origins {
	return &origins{
		names: map[string]Origin{
			preludeFile: OriginPrelude,
		},
	}
}

func (o *origins) newCell() string {
	o.Lock()
	defer o.Unlock()
	o.serial++
	name := fmt.Sprintf("<cell %d>", o.serial)
	o.names[name] = OriginUser
	return name
}

func (o *origins) of(filename string) Origin {
	o.Lock()
	defer o.Unlock()
	return o.names[filename]
}
