package main

import (
	"fmt"

	"github.com/mitchellh/colorstring"
	"github.com/posener/complete"

	"github.com/jwdevantier/tapdance/internal/tapdance"
)

// listCommand implements cli.Command and, via AutocompleteArgs/
// AutocompleteFlags, the optional posener/complete wiring a subcommand
// attaches for shell completion.
type listCommand struct {
	plan tapdance.Plan
}

func (c *listCommand) Help() string {
	return "Usage: tapdctl list\n\n  List the registered plan's display strings in execution order,\n  without running any of them."
}

func (c *listCommand) Synopsis() string {
	return "List registered tests without running them"
}

func (c *listCommand) Run(args []string) int {
	for i, test := range c.plan {
		fmt.Println(colorstring.Color(fmt.Sprintf("[bold]%d[reset]  %s", i+1, test.Display)))
	}
	return 0
}

func (c *listCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *listCommand) AutocompleteFlags() complete.Flags {
	return complete.Flags{}
}
