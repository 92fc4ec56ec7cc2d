package copydylibs

import (
	"fmt"
	"path/filepath"
)

// Build setting names read from the environment
const (
	EnvAction           = "ACTION"
	EnvTargetBuildDir   = "TARGET_BUILD_DIR"
	EnvFrameworksFolder = "FRAMEWORKS_FOLDER_PATH"
	EnvExecutablePath   = "EXECUTABLE_PATH"
	EnvCodeSignIdentity = "CODE_SIGN_IDENTITY"

	ActionBuild = "build"
)

// Config holds the Xcode build settings the bundling pass needs
type Config struct {
	Action               string
	TargetBuildDir       string
	FrameworksFolderPath string
	ExecutablePath       string

	// CodeSignIdentity is only used when HasCodeSignIdentity is true.
	CodeSignIdentity    string
	HasCodeSignIdentity bool
}

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ConfigFromEnv reads the build settings through lookup.
// When the action is not "build" only Action is populated.
func ConfigFromEnv(lookup LookupFunc) (*Config, error) {
	cfg := &Config{Action: ActionBuild}
	if action, ok := lookup(EnvAction); ok {
		cfg.Action = action
	}
	if !cfg.IsBuild() {
		return cfg, nil
	}

	required := []struct {
		key string
		dst *string
	}{
		{EnvTargetBuildDir, &cfg.TargetBuildDir},
		{EnvFrameworksFolder, &cfg.FrameworksFolderPath},
		{EnvExecutablePath, &cfg.ExecutablePath},
	}
	for _, r := range required {
		v, ok := lookup(r.key)
		if !ok {
			return nil, fmt.Errorf("$%s is not set", r.key)
		}
		*r.dst = v
	}

	cfg.CodeSignIdentity, cfg.HasCodeSignIdentity = lookup(EnvCodeSignIdentity)
	return cfg, nil
}

// IsBuild reports whether the tool should do any work
func (c *Config) IsBuild() bool {
	return c.Action == ActionBuild
}

// FrameworksDir returns the directory dylibs are copied into
func (c *Config) FrameworksDir() string {
	return c.resolve(c.FrameworksFolderPath)
}

// ExecutableFile returns the path of the main executable
func (c *Config) ExecutableFile() string {
	return c.resolve(c.ExecutablePath)
}

// resolve places path under TargetBuildDir unless it is already absolute
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.TargetBuildDir, path)
}
