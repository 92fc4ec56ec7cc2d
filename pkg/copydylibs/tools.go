package copydylibs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner invokes external tools
type Runner interface {
	// Output runs the tool and returns its stdout.
	Output(name string, args ...string) ([]byte, error)
	// Run runs the tool with its output passed through.
	Run(name string, args ...string) error
}

// ToolError is returned when an external tool exits with a non-zero status
// or cannot be started
type ToolError struct {
	Message  string   // What the tool was asked to do
	Command  []string // Tool name followed by its arguments
	ExitCode int      // -1 if the tool did not run to completion
	Err      error
}

func (e *ToolError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d", CommandLine(e.Command), e.ExitCode)
	}
	return fmt.Sprintf("failed to run %s: %v", CommandLine(e.Command), e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExecRunner runs tools with os/exec
type ExecRunner struct {
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr
}

// Output implements Runner
func (r *ExecRunner) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = r.stderr()

	out, err := cmd.Output()
	if err != nil {
		return nil, newToolError(name, args, err)
	}
	return out, nil
}

// Run implements Runner
func (r *ExecRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		return newToolError(name, args, err)
	}
	return nil
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func newToolError(name string, args []string, err error) *ToolError {
	te := &ToolError{
		Command:  append([]string{name}, args...),
		ExitCode: -1,
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	}
	return te
}

// wrapToolError attaches a message to a tool failure, keeping its command
// line and exit code
func wrapToolError(err error, format string, a ...interface{}) error {
	te := &ToolError{
		Message:  fmt.Sprintf(format, a...),
		ExitCode: -1,
		Err:      err,
	}
	var inner *ToolError
	if errors.As(err, &inner) {
		te.Command = inner.Command
		te.ExitCode = inner.ExitCode
	}
	return te
}

// CommandLine joins a tool name and its arguments for display
func CommandLine(cmd []string) string {
	return strings.Join(cmd, " ")
}
