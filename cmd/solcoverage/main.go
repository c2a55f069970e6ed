// Command solcoverage charts which mission sols a collection of Viking
// Lander tapes covers. It catalogues the input exactly as the extractor
// would, then renders one column per sol, split by landing site and
// coloured by band type class.
//
// Usage:
//
//	solcoverage -o coverage.png [OPTIONS] input
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/planum-obs/viking/assemble"
	"github.com/planum-obs/viking/log"
	"github.com/planum-obs/viking/tools/coverage"
)

type options struct {
	Output         string `short:"o" long:"output" default:"coverage.png" description:"Chart output filename"`
	Width          int    `short:"W" long:"width" default:"800" description:"Chart width in pixels"`
	Height         int    `short:"H" long:"height" default:"300" description:"Chart height in pixels"`
	Recursive      bool   `short:"r" long:"recursive" description:"Descend into subdirectories of the input"`
	IgnoreBadFiles bool   `long:"ignore-bad-files" description:"Skip bands that fail to decode"`
	Verbose        bool   `short:"V" long:"verbose" description:"Log every decoding step"`

	Args struct {
		Input string `positional-arg-name:"input" required:"yes" description:"Band file, directory, or zip archive"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "solcoverage"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	log.SetLogger(log.NewZerologAdapter(zlog))

	runOpts := assemble.DefaultOptions()
	runOpts.Recursive = opts.Recursive
	runOpts.IgnoreBadFiles = opts.IgnoreBadFiles

	assembler := assemble.New(opts.Args.Input, "", runOpts)
	if _, err := assembler.BuildCatalogue(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	samples := coverage.FromCatalogue(assembler.Catalogue())
	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "no camera events found")
		os.Exit(1)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	chartOpts := &coverage.Options{Width: opts.Width, Height: opts.Height, Padding: 20}
	if err := coverage.WritePNG(f, samples, chartOpts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d camera events)\n", opts.Output, len(samples))
}
