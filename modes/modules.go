package modes

import (
	"os"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/symbook/vars"
)

// ModuleForProduction provides the production Mode and a nil *testing.T.
type ModuleForProduction struct {
	dscope.Module
}

func ForProduction() ModuleForProduction {
	return ModuleForProduction{}
}

func (ModuleForProduction) T() *testing.T {
	return nil
}

func (ModuleForProduction) Mode() Mode {
	return ModeProduction
}

type ModuleForDevelopment struct {
	dscope.Module
}

func (ModuleForDevelopment) T() *testing.T {
	return nil
}

func (ModuleForDevelopment) Mode() Mode {
	return ModeDevelopment
}

type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (m ModuleForTest) Mode() Mode {
	return ModeDevelopment
}

// FromEnv selects the development mode when SYMBOOK_DEV is a true value, and production otherwise.
// Development mode reads config files from the working directory only.
func FromEnv() any {
	if vars.StrToBool(os.Getenv("SYMBOOK_DEV")) {
		return ModuleForDevelopment{}
	}
	return ForProduction()
}
