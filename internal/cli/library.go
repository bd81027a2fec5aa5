package cli

import (
	"github.com/sdd-labs/sdd-scaffold/internal/config"
	"github.com/sdd-labs/sdd-scaffold/internal/library"
)

// openLibrary returns the template library for dir. An empty dir falls back
// to the skills_dir user setting, then to the builtin library.
func openLibrary(dir string) (*library.Library, error) {
	if dir == "" {
		dir = config.Get(config.KeySkillsDir)
	}
	lib, err := library.Select(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened template library", "library", lib.Name(), "components", lib.Names())
	return lib, nil
}

// loadProject reads a project configuration and fills skills_dir from the
// user settings when the file omits it.
func loadProject(path string) (*config.Project, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.SkillsDir == "" {
		if dir := config.Get(config.KeySkillsDir); dir != "" {
			cfg = cfg.WithSkillsDir(dir)
		}
	}
	logger.Debug("loaded project configuration", "path", cfg.Path(), "components", cfg.Components, "target_dir", cfg.TargetDir)
	return cfg, nil
}
