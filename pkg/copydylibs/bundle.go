package copydylibs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options contains everything a bundling pass needs
type Options struct {
	Config   *Config
	Settings *Settings // Defaults to DefaultSettings()
	Runner   Runner    // Defaults to an ExecRunner writing to Out
	Lister   Lister    // Defaults to an OtoolLister using Runner
	Out      io.Writer // Progress output, defaults to os.Stdout
}

// Result describes what a bundling pass did
type Result struct {
	FrameworksDir string
	Copied        []string // Newly copied dylibs, in copy order
	InstallNames  *InstallNames
	Signed        bool
}

// Bundle copies the executable's out-of-bundle dependencies into the
// frameworks directory, points every reference at @rpath and signs the
// copied files. A non-build action returns a nil result and does nothing.
func Bundle(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if !opts.Config.IsBuild() {
		return nil, nil
	}

	b := newBundler(opts.Config.FrameworksDir(), opts)

	// Xcode may already have copied dylibs that still need attention
	if info, err := os.Stat(b.frameworksDir); err == nil && info.IsDir() {
		if err := b.examineExisting(); err != nil {
			return nil, err
		}
	} else {
		if err := os.MkdirAll(b.frameworksDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create frameworks directory: %w", err)
		}
	}

	if err := b.copyDependencies(opts.Config.ExecutableFile()); err != nil {
		return nil, err
	}

	if err := b.changeInstallNames(); err != nil {
		return nil, err
	}

	signed, err := b.codesign(opts.Config)
	if err != nil {
		return nil, err
	}

	return &Result{
		FrameworksDir: b.frameworksDir,
		Copied:        b.copied,
		InstallNames:  b.installNames,
		Signed:        signed,
	}, nil
}

type bundler struct {
	frameworksDir string
	settings      *Settings
	runner        Runner
	lister        Lister
	out           io.Writer

	installNames *InstallNames
	copied       []string
}

func newBundler(frameworksDir string, opts Options) *bundler {
	b := &bundler{
		frameworksDir: frameworksDir,
		settings:      opts.Settings,
		runner:        opts.Runner,
		lister:        opts.Lister,
		out:           opts.Out,
		installNames:  NewInstallNames(),
	}
	if b.settings == nil {
		b.settings = DefaultSettings()
	}
	if b.out == nil {
		b.out = os.Stdout
	}
	if b.runner == nil {
		b.runner = &ExecRunner{Stdout: b.out}
	}
	if b.lister == nil {
		b.lister = &OtoolLister{Runner: b.runner, Tool: b.settings.Tools.Otool}
	}
	return b
}

func (b *bundler) examineExisting() error {
	entries, err := os.ReadDir(b.frameworksDir)
	if err != nil {
		return fmt.Errorf("failed to read frameworks directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".dylib") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := b.copyDependencies(filepath.Join(b.frameworksDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// copyDependencies records and copies every in-scope dependency of file
func (b *bundler) copyDependencies(file string) error {
	fmt.Fprintf(b.out, "Examining '%s'\n", filepath.Base(file))

	deps, err := b.lister.Dependencies(file)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		depDir, depFile := splitInstallName(dep)
		if !b.settings.InScope(depDir) {
			continue
		}

		b.installNames.Add(file, InstallNameChange{
			Old: dep,
			New: b.settings.RpathPrefix + depFile,
		})

		src := dep
		if depDir == "" {
			src = filepath.Join(b.settings.FallbackDir, depFile)
		}
		if err := b.copyDylib(src); err != nil {
			return err
		}
	}
	return nil
}

func (b *bundler) copyDylib(src string) error {
	name := filepath.Base(src)
	dest := filepath.Join(b.frameworksDir, name)

	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(b.out, "'%s' already exists, so not copying\n", name)
		return nil
	}

	if err := copyFile(src, dest, 0644); err != nil {
		return fmt.Errorf("failed to copy '%s': %w", src, err)
	}
	// copyFile's mode is subject to umask
	if err := os.Chmod(dest, 0644); err != nil {
		return fmt.Errorf("failed to chmod '%s': %w", dest, err)
	}

	if err := b.copyDependencies(dest); err != nil {
		return err
	}
	b.copied = append(b.copied, dest)
	return nil
}

func (b *bundler) changeInstallNames() error {
	tool := b.settings.Tools.InstallNameTool
	for _, file := range b.installNames.Files() {
		for _, change := range b.installNames.Changes(file) {
			args := change.Args(file)
			fmt.Fprintf(b.out, "Running %s\n", CommandLine(append([]string{tool}, args...)))
			if err := b.runner.Run(tool, args...); err != nil {
				return wrapToolError(err, "failed to change '%s' to '%s' in '%s'", change.Old, change.New, file)
			}
		}
	}
	return nil
}

func (b *bundler) codesign(cfg *Config) (bool, error) {
	if !cfg.HasCodeSignIdentity {
		fmt.Fprintln(b.out, "Not code-signing as $CODE_SIGN_IDENTITY is not set")
		return false, nil
	}

	tool := b.settings.Tools.Codesign
	for _, dylib := range b.copied {
		args := []string{"--force", "--sign", cfg.CodeSignIdentity, dylib}
		fmt.Fprintf(b.out, "Running %s\n", CommandLine(append([]string{tool}, args...)))
		if err := b.runner.Run(tool, args...); err != nil {
			return false, wrapToolError(err, "failed to codesign '%s'", dylib)
		}
	}
	return true, nil
}

// copyFile copies a single file from src to dst with the given mode using streaming I/O
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
