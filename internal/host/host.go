// Package host realizes the host-OS abstraction spec.md §6 names as an
// external collaborator: { mkdirp, writeFile, rename, isFile, tmpdir,
// path, exec(cmd,args,cwd,output)->{stdout,stderr,exit}, platform,
// getuid, getgid }. The builder, recipe, tempproject and pipeline
// packages perform their filesystem and process operations through a
// Host, so they can be tested against a fake; fetch, featureset's
// metadata reads and the cli scratch-directory handling call os
// directly.
package host

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/creack/pty"
)

// ExecResult is the outcome of an Exec invocation.
type ExecResult struct {
	ExitCode int
}

// Host is the set of host-OS operations the engine consumes. It is
// intentionally narrow: every method maps to one bullet in spec.md §6.
type Host interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, data []byte, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	IsFile(path string) bool
	TempDir() string
	Join(elem ...string) string

	// Exec runs cmd with args in cwd, streaming stdout/stderr to the
	// given writers (either of which may be nil to discard). It honors
	// ctx cancellation by terminating the subprocess.
	Exec(ctx context.Context, cmd string, args []string, cwd string, stdout, stderr io.Writer) (ExecResult, error)

	// ExecPTY is like Exec but connects the subprocess to a pseudo
	// terminal and streams combined output to out. Used by the Build
	// Driver when stdin is a TTY (spec.md §4.6 op.4).
	ExecPTY(ctx context.Context, cmd string, args []string, cwd string, out io.Writer) (ExecResult, error)

	Platform() string
	UID() int
	GID() int
}

// OSHost is the concrete Host backed by the real operating system.
type OSHost struct{}

var _ Host = OSHost{}

func (OSHost) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSHost) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSHost) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (OSHost) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSHost) TempDir() string {
	return os.TempDir()
}

func (OSHost) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (OSHost) Exec(ctx context.Context, cmd string, args []string, cwd string, stdout, stderr io.Writer) (ExecResult, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = cwd
	c.Stdout = stdout
	c.Stderr = stderr
	err := c.Run()
	return ExecResult{ExitCode: exitCode(c, err)}, err
}

func (OSHost) ExecPTY(ctx context.Context, cmd string, args []string, cwd string, out io.Writer) (ExecResult, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = cwd

	f, err := pty.Start(c)
	if err != nil {
		return ExecResult{}, err
	}
	defer f.Close()

	copyDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(out, f)
		close(copyDone)
	}()

	waitErr := c.Wait()
	<-copyDone

	return ExecResult{ExitCode: exitCode(c, waitErr)}, waitErr
}

// exitCode extracts a process exit code even when ProcessState is nil
// (the command never started) or the run failed for a non-ExitError
// reason (e.g. context cancellation killed it).
func exitCode(c *exec.Cmd, err error) int {
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func (OSHost) Platform() string {
	return runtime.GOOS
}

func (OSHost) UID() int {
	return os.Getuid()
}

func (OSHost) GID() int {
	return os.Getgid()
}
