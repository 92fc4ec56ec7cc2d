package copydylibs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := ConfigFromEnv(lookupMap(map[string]string{
		"ACTION":                 "build",
		"TARGET_BUILD_DIR":       "/build/Release",
		"FRAMEWORKS_FOLDER_PATH": "MyApp.app/Contents/Frameworks",
		"EXECUTABLE_PATH":        "MyApp.app/Contents/MacOS/MyApp",
		"CODE_SIGN_IDENTITY":     "Apple Development",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsBuild())
	assert.Equal(t, "/build/Release/MyApp.app/Contents/Frameworks", cfg.FrameworksDir())
	assert.Equal(t, "/build/Release/MyApp.app/Contents/MacOS/MyApp", cfg.ExecutableFile())
	assert.True(t, cfg.HasCodeSignIdentity)
	assert.Equal(t, "Apple Development", cfg.CodeSignIdentity)
}

func TestConfigFromEnvDefaultsToBuild(t *testing.T) {
	cfg, err := ConfigFromEnv(lookupMap(map[string]string{
		"TARGET_BUILD_DIR":       "/build",
		"FRAMEWORKS_FOLDER_PATH": "Frameworks",
		"EXECUTABLE_PATH":        "MyApp",
	}))
	require.NoError(t, err)

	assert.Equal(t, ActionBuild, cfg.Action)
	assert.False(t, cfg.HasCodeSignIdentity)
}

func TestConfigFromEnvEmptyIdentityStillSigns(t *testing.T) {
	cfg, err := ConfigFromEnv(lookupMap(map[string]string{
		"TARGET_BUILD_DIR":       "/build",
		"FRAMEWORKS_FOLDER_PATH": "Frameworks",
		"EXECUTABLE_PATH":        "MyApp",
		"CODE_SIGN_IDENTITY":     "",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.HasCodeSignIdentity)
}

func TestConfigFromEnvNonBuildAction(t *testing.T) {
	for _, action := range []string{"clean", "install", "archive", ""} {
		cfg, err := ConfigFromEnv(lookupMap(map[string]string{"ACTION": action}))
		require.NoError(t, err, "action %q", action)
		assert.False(t, cfg.IsBuild(), "action %q", action)
		assert.Empty(t, cfg.TargetBuildDir)
	}
}

func TestConfigFromEnvMissingVariable(t *testing.T) {
	_, err := ConfigFromEnv(lookupMap(map[string]string{
		"ACTION":           "build",
		"TARGET_BUILD_DIR": "/build",
		"EXECUTABLE_PATH":  "MyApp",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRAMEWORKS_FOLDER_PATH")
}

func TestConfigAbsolutePathsIgnoreBuildDir(t *testing.T) {
	cfg, err := ConfigFromEnv(lookupMap(map[string]string{
		"TARGET_BUILD_DIR":       "/build/Release",
		"FRAMEWORKS_FOLDER_PATH": "/opt/MyApp.app/Contents/Frameworks",
		"EXECUTABLE_PATH":        "/opt/MyApp.app/Contents/MacOS/MyApp",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/opt/MyApp.app/Contents/Frameworks", cfg.FrameworksDir())
	assert.Equal(t, "/opt/MyApp.app/Contents/MacOS/MyApp", cfg.ExecutableFile())
}
