package main

import (
	"fmt"
	"io"

	"github.com/ruminaider/devdock/internal/commands"
)

// printPlan lists the services that will not be started.
func printPlan(w io.Writer, plan *commands.Plan) {
	disabled := plan.Final.Disabled()
	if len(disabled) == 0 {
		fmt.Fprintf(w, "Running %s with no disabled services\n", plan.Project)
	} else {
		fmt.Fprintf(w, "Running %s with the following services disabled\n", plan.Project)
		for _, e := range disabled {
			fmt.Fprintf(w, " -- %s\n", e.Description)
		}
	}
	for _, e := range plan.Skipped {
		fmt.Fprintf(w, "Note: %s has no setting name and will still be started\n", e.Description)
	}
}
