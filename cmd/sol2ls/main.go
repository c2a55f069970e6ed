// Command sol2ls translates a Martian solar day count into its Martian
// month, day of month, and angle of solar longitude.
//
// Usage:
//
//	sol2ls <solar-day>
//	sol2ls --lander 1 <mission-sol>
//
// Without --lander the argument is an absolute solar day within the
// Martian year; with it, a mission sol counted from that lander's
// touchdown.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/planum-obs/viking/areo"
)

type options struct {
	Lander int `short:"l" long:"lander" value-name:"1|2" description:"Count the sol from this lander's touchdown"`

	Args struct {
		SolarDay int `positional-arg-name:"solar-day" required:"yes" description:"Solar day count"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "sol2ls"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	sol := opts.Args.SolarDay
	if opts.Lander != 0 {
		sol = 1 + (areo.LanderEpoch(opts.Lander)+sol)%int(areo.SolsPerYear)
	}
	if sol < 1 {
		fmt.Fprintln(os.Stderr, "error: solar day must be at least 1")
		os.Exit(1)
	}

	ls := areo.SolToLs(sol)
	fmt.Printf("%d, %s (Ls = %g)\n", areo.DayOfMonth(sol), areo.Month(ls), ls.Deg())
}
