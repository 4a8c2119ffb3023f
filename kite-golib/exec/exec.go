package exec

import (
	"context"
	"os/exec"
)

// Cmd is os/exec.Cmd
type Cmd = exec.Cmd

// ExitError is os/exec.ExitError
type ExitError = exec.ExitError

// LookPath is os/exec.LookPath
var LookPath = exec.LookPath

// Command is os/exec.Command, but prevents Windows from opening a Window
func Command(name string, arg ...string) *Cmd {
	cmd := exec.Command(name, arg...)
	cmd.SysProcAttr = sysProcAttr()
	return cmd
}

// CommandContext is os/exec.CommandContext, but prevents Windows from opening a Window
func CommandContext(ctx context.Context, name string, arg ...string) *Cmd {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.SysProcAttr = sysProcAttr()
	return cmd
}

// ExitCode returns the exit status carried by err, -1 if the process did not
// exit normally, or 0 if err is nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
