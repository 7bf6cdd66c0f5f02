// Package runner implements the isolated test runner: it spawns one
// freshly-exec'd child process per test, redirects its standard streams
// to a capture file, arms a wall-clock watchdog inside the child, waits
// for termination, classifies the outcome, and emits one TAP result line
// plus (on failure) the captured output as TAP diagnostics.
package runner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/armon/circbuf"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"
	uuid "github.com/hashicorp/go-uuid"
	ps "github.com/mitchellh/go-ps"

	"github.com/jwdevantier/tapdance/internal/allocator"
	"github.com/jwdevantier/tapdance/internal/custodian"
	"github.com/jwdevantier/tapdance/internal/faultinject"
	"github.com/jwdevantier/tapdance/internal/tap"
	"github.com/jwdevantier/tapdance/internal/tapdance"
)

// ChildIndexEnv names the environment variable the parent sets on the
// re-exec'd child to identify which 1-based plan index it should run.
// Its presence is how a process run of cmd/tapdance tells its child mode
// apart from its parent (suite-driving) mode.
const ChildIndexEnv = "TAPDANCE_CHILD_INDEX"

// Watchdog is the wall-clock limit a single test's child process gets
// before the runner treats it as hung.
const Watchdog = 10 * time.Second

// diagnosticCap bounds how much captured output the runner will relay as
// TAP diagnostics for a single failing test, via an armon/circbuf ring
// buffer. It does not change the line-prefixing grammar for output within
// the bound, it only keeps one runaway test from producing an unbounded
// TAP stream.
const diagnosticCap = 256 * 1024

// Runner is the isolated test runner. The zero value is not usable;
// construct one with New.
type Runner struct {
	logger     hclog.Logger
	scratchDir string
}

// New returns a Runner that creates capture files under scratchDir
// (created if it doesn't exist) and logs ambient (non-TAP) diagnostics
// through logger.
func New(logger hclog.Logger, scratchDir string) (*Runner, error) {
	if err := os.MkdirAll(scratchDir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Runner{logger: logger, scratchDir: scratchDir}, nil
}

// ChildIndex reports the 1-based plan index this process should run as a
// test child, and whether the environment marks this process as a child
// at all. It is checked by cmd/tapdance's main before it decides whether
// to drive the suite or run a single test body.
func ChildIndex() (index int, isChild bool) {
	v := os.Getenv(ChildIndexEnv)
	if v == "" {
		return 0, false
	}
	var i int
	if _, err := fmt.Sscanf(v, "%d", &i); err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// RunChild executes test (the plan entry at the child index) in-process:
// arms the watchdog, constructs a fresh allocator and root custodian,
// invokes the body, shuts the custodian down, and exits with the body's
// status. It does not return.
func RunChild(test tapdance.Test) {
	time.AfterFunc(Watchdog, faultinject.Alarm)

	alloc := allocator.New()
	root := custodian.New(nil, alloc)
	status := test.Body(root)
	root.Shutdown()
	os.Exit(status)
}

// Run drives plan to completion, writing a full TAP version 14 stream to
// out. It always returns nil: every per-test failure is reported in-band
// on the TAP stream rather than escalated to the caller, and errors from
// writes to out are not checked.
func (r *Runner) Run(plan tapdance.Plan, out io.Writer) error {
	w := tap.New(out)
	w.Version()
	w.Plan(len(plan))

	for i, test := range plan {
		r.runOne(i+1, test, w)
	}
	return nil
}

func (r *Runner) runOne(i int, test tapdance.Test, w *tap.Writer) {
	capture, path, err := r.newCaptureFile()
	if err != nil {
		r.logger.Warn("failed to create capture file", "test", test.Display, "error", err)
		w.NotOk(i, test.Display, "tmpfile creation failed")
		return
	}
	defer func() {
		if cleanupErr := combineErrors(capture.Close(), r.removeCaptureFile(path)); cleanupErr != nil {
			r.logger.Warn("capture file cleanup failed", "test", test.Display, "path", path, "error", cleanupErr)
		}
	}()

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%d", ChildIndexEnv, i))
	cmd.Stdout = capture
	cmd.Stderr = capture

	runErr := cmd.Run()

	outcome, reason := classify(cmd, runErr)
	switch outcome {
	case outcomeSpawnFailed:
		r.logger.Warn("failed to spawn test child", "test", test.Display, "error", runErr)
		w.NotOk(i, test.Display, "fork failed")
		return
	case outcomePass:
		w.Ok(i, test.Display)
		return
	case outcomeTimeout:
		r.warnIfLingering(cmd.Process.Pid, test.Display)
	}

	w.NotOk(i, test.Display, reason)
	r.emitDiagnostics(path, w)
}

// warnIfLingering checks the process table for pid after a watchdog
// timeout classification, so an operator sees an explicit warning if the
// child somehow survived its own SIGALRM rather than silently leaking.
func (r *Runner) warnIfLingering(pid int, display string) {
	proc, err := ps.FindProcess(pid)
	if err != nil {
		r.logger.Warn("failed to check process table after timeout", "test", display, "pid", pid, "error", err)
		return
	}
	if proc != nil {
		r.logger.Warn("test child still present in process table after watchdog signal", "test", display, "pid", pid)
	}
}

type outcome int

const (
	outcomePass outcome = iota
	outcomeExitCode
	outcomeTimeout
	outcomeSignaled
	outcomeUnknown
	outcomeSpawnFailed
)

// classify turns a finished child's wait status into an outcome: exit 0
// is a pass, a nonzero exit is an exit-code failure, the watchdog's
// SIGALRM is a timeout, any other signal is "killed by signal N", and
// any other wait status is unknown. A missing process state (the child
// could not be started, or waiting on it failed) is a spawn failure.
func classify(cmd *exec.Cmd, runErr error) (outcome, string) {
	state := cmd.ProcessState
	if state == nil {
		// cmd.Start failed, or cmd.Wait failed before recording a state:
		// there is no wait status to classify.
		return outcomeSpawnFailed, ""
	}

	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return outcomeUnknown, "unknown failure"
	}

	switch {
	case status.Exited() && status.ExitStatus() == 0:
		return outcomePass, ""
	case status.Exited():
		return outcomeExitCode, fmt.Sprintf("exit code: %d", status.ExitStatus())
	case status.Signaled() && status.Signal() == syscall.SIGALRM:
		return outcomeTimeout, fmt.Sprintf("timeout after %ds", int(Watchdog.Seconds()))
	case status.Signaled():
		return outcomeSignaled, fmt.Sprintf("killed by signal %d", int(status.Signal()))
	default:
		return outcomeUnknown, "unknown failure"
	}
}

func (r *Runner) newCaptureFile() (*os.File, string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, "", fmt.Errorf("generate capture file name: %w", err)
	}
	path := filepath.Join(r.scratchDir, "tapdance_test_"+id)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

func (r *Runner) removeCaptureFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// emitDiagnostics reopens the capture file at path, bounds its content
// through a circbuf.Buffer ring buffer, and streams it to w as TAP
// diagnostics.
func (r *Runner) emitDiagnostics(path string, w *tap.Writer) {
	f, err := os.Open(path)
	if err != nil {
		r.logger.Warn("failed to reopen capture file for diagnostics", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			r.logger.Warn("failed to close capture file after diagnostics", "path", path, "error", closeErr)
		}
	}()

	buf, err := circbuf.NewBuffer(diagnosticCap)
	if err != nil {
		// Unreachable for a positive, constant capacity, but handled
		// rather than asserted away.
		r.logger.Error("failed to allocate diagnostic ring buffer", "error", err)
		return
	}

	total, copyErr := io.Copy(buf, f)
	if copyErr != nil {
		r.logger.Warn("failed to read capture file", "path", path, "error", copyErr)
	}

	if err := w.Diagnostics(bytes.NewReader(buf.Bytes())); err != nil {
		r.logger.Warn("failed to write diagnostics", "path", path, "error", err)
	}

	if total > buf.Size() {
		w.Truncated(humanize.Bytes(uint64(total)))
	}
}

// combineErrors is used by callers that need to report more than one
// cleanup failure at once without silently dropping any of them.
func combineErrors(errs ...error) error {
	var merr *multierror.Error
	for _, e := range errs {
		if e != nil {
			merr = multierror.Append(merr, e)
		}
	}
	return merr.ErrorOrNil()
}
