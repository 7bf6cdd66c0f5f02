// Command tapdance is the harness binary, with its registered plan
// hand-written in demo.go.
//
// Invoked normally, it drives the full plan and writes a TAP version 14
// stream to stdout, exiting 0 regardless of individual test outcomes.
// Invoked with TAPDANCE_CHILD_INDEX set in its environment, it instead
// runs exactly one test body in-process and exits with that body's
// status; this is the re-exec'd "child" launched by its own parent
// invocation (see internal/runner).
package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/jwdevantier/tapdance/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	plan := demoPlan()

	if index, isChild := runner.ChildIndex(); isChild {
		if index < 1 || index > len(plan) {
			fmt.Fprintf(os.Stderr, "tapdance: child index %d out of range for a %d-test plan\n", index, len(plan))
			return 1
		}
		runner.RunChild(plan[index-1])
		return 0 // unreachable: RunChild exits the process itself.
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "tapdance",
		Level:  hclog.Warn,
		Output: os.Stderr, // stdout is reserved for the TAP stream
	})

	scratchDir, err := os.MkdirTemp("", "tapdance-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tapdance: create scratch dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(scratchDir)

	r, err := runner.New(logger, scratchDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tapdance: %v\n", err)
		return 1
	}

	var tapOut bytes.Buffer
	if err := r.Run(plan, &tapOut); err != nil {
		fmt.Fprintf(os.Stderr, "tapdance: %v\n", err)
		return 1
	}
	os.Stdout.Write(tapOut.Bytes())

	printSummary(tapOut.String())
	return 0
}

// printSummary tallies the ok/not ok result lines of a finished TAP
// stream and prints a short colorized pass/fail count to stderr, so a
// human watching the run gets a glance at overall health without having
// to read the raw protocol. The TAP stream on stdout itself stays plain.
func printSummary(tapStream string) {
	var passed, failed int
	for _, line := range strings.Split(tapStream, "\n") {
		switch {
		case strings.HasPrefix(line, "not ok "):
			failed++
		case strings.HasPrefix(line, "ok "):
			passed++
		}
	}

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	green.Fprintf(os.Stderr, "%d passed", passed)
	fmt.Fprint(os.Stderr, ", ")
	red.Fprintf(os.Stderr, "%d failed", failed)
	fmt.Fprintln(os.Stderr)
}
