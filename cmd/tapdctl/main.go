// Command tapdctl is operator tooling around a registered plan: it can
// list the tests a tapdance binary would run without running any of
// them, touching no test-execution semantics.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	"github.com/jwdevantier/tapdance/internal/tapdance"
)

func main() {
	plan := demoPlanForList()

	c := &cli.CLI{
		Name:     "tapdctl",
		Args:     os.Args[1:],
		Commands: map[string]cli.CommandFactory{
			"list": func() (cli.Command, error) {
				return &listCommand{plan: plan}, nil
			},
		},
		HelpWriter:  os.Stdout,
		ErrorWriter: os.Stderr,
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode)
}

// demoPlanForList is a hand-kept copy of the display strings of
// cmd/tapdance's demo plan, without bodies; tapdctl does not read the
// plan from a tapdance binary.
func demoPlanForList() tapdance.Plan {
	return tapdance.Plan{
		{Display: "test_program()"},
		{Display: "test_add(2, 3, 5)"},
		{Display: "test_segfault()"},
		{Display: "test_add(2, 3, 6)"},
		{Display: "test_add(4, 8, 12)"},
		{Display: "test_hang()"},
		{Display: "test_double_shutdown()"},
		{Display: "test_nested_deferred()"},
	}
}
