package copydylibs

import (
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"
)

// AppLayout locates the parts of an .app bundle the tool works on
type AppLayout struct {
	Executable    string // Absolute path of the main executable
	FrameworksDir string
}

// ResolveApp finds the main executable and frameworks directory of an .app
// bundle. macOS bundles keep them under Contents/, iOS bundles are flat.
func ResolveApp(appPath string) (*AppLayout, error) {
	contents := filepath.Join(appPath, "Contents")
	infoPlist := filepath.Join(contents, "Info.plist")
	execDir := filepath.Join(contents, "MacOS")
	frameworksDir := filepath.Join(contents, "Frameworks")

	if _, err := os.Stat(infoPlist); os.IsNotExist(err) {
		infoPlist = filepath.Join(appPath, "Info.plist")
		execDir = appPath
		frameworksDir = filepath.Join(appPath, "Frameworks")
	}

	execName, err := GetExecutableName(infoPlist)
	if err != nil {
		return nil, err
	}

	return &AppLayout{
		Executable:    filepath.Join(execDir, execName),
		FrameworksDir: frameworksDir,
	}, nil
}

// GetExecutableName reads CFBundleExecutable from an Info.plist
func GetExecutableName(infoPlistPath string) (string, error) {
	data, err := os.ReadFile(infoPlistPath)
	if err != nil {
		return "", fmt.Errorf("failed to read Info.plist: %w", err)
	}

	var info map[string]interface{}
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("failed to parse plist: %w", err)
	}

	execName, ok := info["CFBundleExecutable"].(string)
	if !ok || execName == "" {
		return "", fmt.Errorf("CFBundleExecutable not found in Info.plist")
	}

	return execName, nil
}

// BundledDylibs returns the .dylib files directly inside dir, sorted by name.
// A missing directory yields no files.
func BundledDylibs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.dylib"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
