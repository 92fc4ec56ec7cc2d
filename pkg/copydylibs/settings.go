package copydylibs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tools names the executables invoked for each step
type Tools struct {
	Otool           string `yaml:"otool"`
	InstallNameTool string `yaml:"install_name_tool"`
	Codesign        string `yaml:"codesign"`
}

// Settings tunes which dependencies are bundled and how
type Settings struct {
	// Prefixes a dependency's directory must start with to be copied.
	Prefixes []string `yaml:"prefixes"`
	// FallbackDir is where dependencies recorded as a bare filename are read from.
	FallbackDir string `yaml:"fallback_dir"`
	// RpathPrefix replaces the directory of every copied dependency.
	RpathPrefix string `yaml:"rpath_prefix"`
	Tools       Tools  `yaml:"tools"`
}

// DefaultSettings returns the settings used when no config file is given
func DefaultSettings() *Settings {
	return &Settings{
		Prefixes:    []string{"/opt/local", "/usr/local"},
		FallbackDir: "/usr/local/lib",
		RpathPrefix: "@rpath/",
		Tools: Tools{
			Otool:           "otool",
			InstallNameTool: "install_name_tool",
			Codesign:        "codesign",
		},
	}
}

// LoadSettings reads a YAML settings file on top of the defaults.
// An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

// ParseSettings decodes YAML settings, keeping defaults for empty keys
func ParseSettings(data []byte) (*Settings, error) {
	var parsed Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	settings := DefaultSettings()
	if len(parsed.Prefixes) > 0 {
		settings.Prefixes = parsed.Prefixes
	}
	if parsed.FallbackDir != "" {
		settings.FallbackDir = parsed.FallbackDir
	}
	if parsed.RpathPrefix != "" {
		settings.RpathPrefix = parsed.RpathPrefix
	}
	if parsed.Tools.Otool != "" {
		settings.Tools.Otool = parsed.Tools.Otool
	}
	if parsed.Tools.InstallNameTool != "" {
		settings.Tools.InstallNameTool = parsed.Tools.InstallNameTool
	}
	if parsed.Tools.Codesign != "" {
		settings.Tools.Codesign = parsed.Tools.Codesign
	}
	return settings, nil
}

// InScope reports whether a dependency in dir should be bundled.
// The check is a plain string prefix, so /usr/localfoo also matches.
func (s *Settings) InScope(dir string) bool {
	if dir == "" {
		return true
	}
	for _, prefix := range s.Prefixes {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	return false
}

// Classify labels an install name "bundle" if it would be copied into the
// bundle and "system" otherwise
func (s *Settings) Classify(dep string) string {
	dir, _ := splitInstallName(dep)
	if s.InScope(dir) {
		return "bundle"
	}
	return "system"
}
