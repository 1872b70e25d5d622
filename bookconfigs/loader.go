package bookconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/symbook/cmds"
	"github.com/reusee/symbook/configs"
	"github.com/reusee/symbook/logs"
	"github.com/reusee/symbook/modes"
)

//go:embed schema.cue
var schema string

var configFlag = cmds.Var[string]("-config", "read configuration from this CUE file only")

func (Module) ConfigsLoader(
	logger logs.Logger,
	mode modes.Mode,
) configs.Loader {

	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	// explicit
	if *configFlag != "" {
		paths = append(paths, *configFlag)
		return configs.NewLoader(paths, schema)
	}

	filenames := []string{
		"symbook.cue",
		".symbook.cue",
	}

	// working directory
	workingDir, err := os.Getwd()
	if err == nil {
		for _, filename := range filenames {
			path := filepath.Join(workingDir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	if mode == modes.ModeDevelopment {
		return configs.NewLoader(paths, schema)
	}

	// user config dir
	configDir, err := os.UserConfigDir()
	if err == nil {
		for _, filename := range filenames {
			path := filepath.Join(configDir, "symbook", filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	// system wide dir
	for _, filename := range filenames {
		path := filepath.Join("/etc", filename)
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	return configs.NewLoader(paths, schema)
}

// Schema returns the closed schema every symbook config document is validated against.
func Schema() string {
	return schema
}
