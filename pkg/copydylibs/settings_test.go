package copydylibs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsScope(t *testing.T) {
	s := DefaultSettings()

	tests := []struct {
		dir  string
		want bool
	}{
		{"", true},
		{"/usr/local/lib", true},
		{"/opt/local/lib", true},
		{"/usr/local/Cellar/zlib/1.3/lib", true},
		{"/usr/localfoo", true},
		{"/usr/lib", false},
		{"/System/Library/Frameworks/Cocoa.framework/Versions/A", false},
		{"@rpath", false},
		{"@executable_path/../Frameworks", false},
		{"/opt/homebrew/lib", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.InScope(tt.dir), "InScope(%q)", tt.dir)
	}
}

func TestClassify(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "bundle", s.Classify("/opt/local/lib/libz.1.dylib"))
	assert.Equal(t, "bundle", s.Classify("libz.1.dylib"))
	assert.Equal(t, "system", s.Classify("/usr/lib/libSystem.B.dylib"))
	assert.Equal(t, "system", s.Classify("@rpath/libz.1.dylib"))
}

func TestParseSettingsOverrides(t *testing.T) {
	s, err := ParseSettings([]byte(`
prefixes:
  - /opt/homebrew
fallback_dir: /opt/homebrew/lib
tools:
  otool: x86_64-apple-darwin-otool
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/homebrew"}, s.Prefixes)
	assert.Equal(t, "/opt/homebrew/lib", s.FallbackDir)
	assert.Equal(t, "x86_64-apple-darwin-otool", s.Tools.Otool)

	// Unset keys keep their defaults
	assert.Equal(t, "@rpath/", s.RpathPrefix)
	assert.Equal(t, "install_name_tool", s.Tools.InstallNameTool)
	assert.Equal(t, "codesign", s.Tools.Codesign)
}

func TestParseSettingsEmpty(t *testing.T) {
	s, err := ParseSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestParseSettingsUnknownKey(t *testing.T) {
	_, err := ParseSettings([]byte("prefix: /opt/homebrew\n"))
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	path := filepath.Join(t.TempDir(), "copydylibs.yml")
	require.NoError(t, os.WriteFile(path, []byte("rpath_prefix: \"@loader_path/../Frameworks/\"\n"), 0644))

	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "@loader_path/../Frameworks/", s.RpathPrefix)

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
