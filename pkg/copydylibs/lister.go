package copydylibs

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Lister returns the install names a binary links against
type Lister interface {
	Dependencies(path string) ([]string, error)
}

// otool -L prints one dependency per line:
//
//	/opt/local/lib/libz.1.dylib (compatibility version 1.0.0, current version 1.2.8)
var otoolLineRe = regexp.MustCompile(`^\s*(\S+)\s*\(compatibility version .+\)$`)

// OtoolLister lists dependencies with otool -L
type OtoolLister struct {
	Runner Runner
	Tool   string // Defaults to "otool"
}

// Dependencies implements Lister
func (l *OtoolLister) Dependencies(path string) ([]string, error) {
	tool := l.Tool
	if tool == "" {
		tool = "otool"
	}

	out, err := l.Runner.Output(tool, "-L", path)
	if err != nil {
		return nil, wrapToolError(err, "failed to list dependencies of '%s'", path)
	}
	return ParseOtoolOutput(out), nil
}

// ParseOtoolOutput extracts install names from otool -L output.
// The header line and architecture markers are skipped.
func ParseOtoolOutput(out []byte) []string {
	var deps []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := otoolLineRe.FindStringSubmatch(line); m != nil {
			deps = append(deps, m[1])
		}
	}
	return deps
}

// NewLister returns the lister for a backend name ("otool" or "native")
func NewLister(backend string, runner Runner, settings *Settings) (Lister, error) {
	switch backend {
	case "", "otool":
		return &OtoolLister{Runner: runner, Tool: settings.Tools.Otool}, nil
	case "native":
		return &MachOLister{}, nil
	default:
		return nil, fmt.Errorf("unknown lister %q (expected otool or native)", backend)
	}
}

// splitInstallName splits an install name into directory and filename.
// A bare filename has an empty directory.
func splitInstallName(name string) (dir, file string) {
	dir, file = filepath.Split(name)
	if len(dir) > 1 {
		dir = strings.TrimRight(dir, "/")
		if dir == "" {
			dir = "/"
		}
	}
	return dir, file
}
