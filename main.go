package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aluedeke/go-copydylibs/pkg/copydylibs"
	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

// exitFailure is returned for any error so Xcode fails the build phase
const exitFailure = 99

const usage = `go-copydylibs - Bundle dylib dependencies into an app

Copies the dylibs an executable links against from /usr/local and /opt/local
into the app's frameworks directory, changes their install names to @rpath
and code-signs the copied files. Intended to run as an Xcode build phase.

Usage:
  go-copydylibs [--env-file=<path>] [--config=<path>] [--lister=<backend>]
  go-copydylibs deps (--binary=<path> | --app=<path>) [--config=<path>] [--lister=<backend>]
  go-copydylibs -h | --help
  go-copydylibs --version

Commands:
  deps      List the dependencies of a binary or an app bundle without changing anything

Options:
  --env-file=<path>     Load build settings from a dotenv file (existing variables win)
  --config=<path>       YAML settings file (prefixes, fallback_dir, rpath_prefix, tools)
  --lister=<backend>    How dependencies are listed: otool or native [default: otool]
  --binary=<path>       Mach-O binary to inspect (deps command)
  --app=<path>          .app bundle to inspect (deps command)
  -h --help             Show this help message
  --version             Show version

Environment Variables:
  ACTION                  Only "build" does anything (defaults to build)
  TARGET_BUILD_DIR        Build products directory
  FRAMEWORKS_FOLDER_PATH  Frameworks directory, relative to TARGET_BUILD_DIR
  EXECUTABLE_PATH         Main executable, relative to TARGET_BUILD_DIR
  CODE_SIGN_IDENTITY      Signing identity; copied dylibs are not signed if unset

Examples:
  # Xcode "Run Script" build phase
  go-copydylibs

  # Run outside Xcode with saved build settings
  go-copydylibs --env-file=build.env

  # Use the built-in Mach-O reader instead of otool
  go-copydylibs --lister=native

  # Show what would be bundled
  go-copydylibs deps --app=build/Release/MyApp.app
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var helped bool
	parser := &docopt.Parser{HelpHandler: func(err error, text string) {
		if err != nil {
			fmt.Fprintln(stderr, text)
			return
		}
		fmt.Fprintln(stdout, text)
		helped = true
	}}
	opts, err := parser.ParseArgs(usage, args, version)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing arguments: %v\n", err)
		return exitFailure
	}
	if helped {
		return 0
	}

	if deps, _ := opts.Bool("deps"); deps {
		err = runDeps(opts, stdout, stderr)
	} else {
		err = runCopy(opts, stdout, stderr)
	}
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}
	return 0
}

func runCopy(opts docopt.Opts, stdout, stderr io.Writer) error {
	envFile, _ := opts.String("--env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := copydylibs.ConfigFromEnv(os.LookupEnv)
	if err != nil {
		return err
	}
	if !cfg.IsBuild() {
		return nil
	}

	settings, runner, lister, err := setup(opts, stdout, stderr)
	if err != nil {
		return err
	}

	result, err := copydylibs.Bundle(copydylibs.Options{
		Config:   cfg,
		Settings: settings,
		Runner:   runner,
		Lister:   lister,
		Out:      stdout,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Copied %d dylib(s), changed %d install name(s)\n", len(result.Copied), result.InstallNames.Len())
	return nil
}

func runDeps(opts docopt.Opts, stdout, stderr io.Writer) error {
	binaryPath, _ := opts.String("--binary")
	appPath, _ := opts.String("--app")

	settings, _, lister, err := setup(opts, stdout, stderr)
	if err != nil {
		return err
	}

	files := []string{binaryPath}
	if appPath != "" {
		app, err := copydylibs.ResolveApp(appPath)
		if err != nil {
			return fmt.Errorf("failed to resolve app bundle: %w", err)
		}
		bundled, err := copydylibs.BundledDylibs(app.FrameworksDir)
		if err != nil {
			return fmt.Errorf("failed to list bundled dylibs: %w", err)
		}
		files = []string{app.Executable}
		for _, dylib := range bundled {
			if !copydylibs.IsMachO(dylib) {
				fmt.Fprintf(stdout, "Skipping '%s' as it is not a Mach-O file\n", filepath.Base(dylib))
				continue
			}
			files = append(files, dylib)
		}
	}

	for _, file := range files {
		deps, err := lister.Dependencies(file)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s:\n", file)
		for _, dep := range deps {
			fmt.Fprintf(stdout, "  %-6s %s\n", settings.Classify(dep), dep)
		}
	}
	return nil
}

func setup(opts docopt.Opts, stdout, stderr io.Writer) (*copydylibs.Settings, copydylibs.Runner, copydylibs.Lister, error) {
	configPath, _ := opts.String("--config")
	backend, _ := opts.String("--lister")

	settings, err := copydylibs.LoadSettings(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	runner := &copydylibs.ExecRunner{Stdout: stdout, Stderr: stderr}
	lister, err := copydylibs.NewLister(backend, runner, settings)
	if err != nil {
		return nil, nil, nil, err
	}
	return settings, runner, lister, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var toolErr *copydylibs.ToolError
	if errors.As(err, &toolErr) && len(toolErr.Command) > 0 {
		fmt.Fprintf(w, "  command: %s\n", copydylibs.CommandLine(toolErr.Command))
		if toolErr.ExitCode >= 0 {
			fmt.Fprintf(w, "  exit status: %d\n", toolErr.ExitCode)
		} else if toolErr.Err != nil {
			fmt.Fprintf(w, "  cause: %v\n", toolErr.Err)
		}
	}
}
