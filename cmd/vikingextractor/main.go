// Command vikingextractor recovers images from the Viking Lander VICAR
// band files distributed on the mission's magnetic tapes.
//
// Usage:
//
//	vikingextractor [OPTIONS] input [output]
//
// The input is a band file, a directory of them, or a zip archive (a
// member can be addressed directly as archive.zip:/member). Bands are
// catalogued by camera event, the best consistent set per event is
// selected, and colour or grayscale PNGs are written into the output
// directory.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/planum-obs/viking/assemble"
	"github.com/planum-obs/viking/log"
)

var version = "dev"

type options struct {
	DirectorizeBandClass bool `long:"directorize-band-class" description:"Output into a subdirectory per band type class"`
	DirectorizeLocation  bool `long:"directorize-location" description:"Output into a subdirectory per landing site"`
	DirectorizeMonth     bool `long:"directorize-month" description:"Output into a subdirectory per Martian month"`
	DirectorizeSol       bool `long:"directorize-sol" description:"Output into a subdirectory per solar day"`
	DryRun               bool `long:"dry-run" description:"Perform all decoding and decisions but write nothing"`
	FilterCameraEvent    string `long:"filter-camera-event" value-name:"ID" description:"Only process bands of this camera event identifier"`
	FilterDiode          string `long:"filter-diode" value-name:"CLASS" default:"any" choice:"any" choice:"broadband" choice:"colour" choice:"infrared" choice:"sun" choice:"survey" description:"Only process bands of this diode class"`
	FilterLander         int    `long:"filter-lander" value-name:"0|1|2" description:"Only process bands from this lander (0 accepts both)"`
	FilterSolarDay       int    `long:"filter-solar-day" value-name:"N" default:"-1" description:"Only process bands taken on this solar day"`
	GenerateMetadata     bool   `long:"generate-metadata" description:"Write a text sidecar per reconstructed image"`
	IgnoreBadFiles       bool   `long:"ignore-bad-files" description:"Skip bands and events that fail to decode instead of aborting"`
	Interlace            bool   `long:"interlace" description:"Write Adam7 interlaced PNGs"`
	Jobs                 int    `short:"j" long:"jobs" optional:"yes" optional-value:"0" value-name:"N" description:"Accepted for compatibility; processing is sequential"`
	NoAnsiColours        bool   `long:"no-ansi-colours" description:"Disable colour in console output"`
	NoAutoRotate         bool   `long:"no-auto-rotate" description:"Do not rotate bands to their detected orientation"`
	NoReconstruct        bool   `long:"no-reconstruct" description:"Dump every band unreconstructed"`
	Overwrite            bool   `long:"overwrite" description:"Replace existing output files"`
	Recursive            bool   `short:"r" long:"recursive" description:"Descend into subdirectories of the input"`
	SummarizeOnly        bool   `long:"summarize-only" description:"Only print progress and final totals"`
	Suppress             bool   `long:"suppress" description:"Only log errors"`
	Verbose              bool   `short:"V" long:"verbose" description:"Log every decoding step"`
	Version              func() `short:"v" long:"version" description:"Print version and exit"`

	Args struct {
		Input  string `positional-arg-name:"input" required:"yes" description:"Band file, directory, or zip archive"`
		Output string `positional-arg-name:"output" description:"Output directory (default: current directory)"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	opts.Version = func() {
		fmt.Printf("vikingextractor %s\n", version)
		os.Exit(0)
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "vikingextractor"
	parser.LongDescription = "Recovers colour and grayscale images from Viking Lander VICAR band files."

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	configureLogging(&opts)

	if opts.Jobs != 0 {
		log.Debug("jobs option accepted, processing stays sequential", log.F("jobs", opts.Jobs))
	}

	runOpts := &assemble.Options{
		DirectorizeBandClass: opts.DirectorizeBandClass,
		DirectorizeLocation:  opts.DirectorizeLocation,
		DirectorizeMonth:     opts.DirectorizeMonth,
		DirectorizeSol:       opts.DirectorizeSol,
		FilterCameraEvent:    opts.FilterCameraEvent,
		FilterDiodeClass:     opts.FilterDiode,
		FilterLander:         opts.FilterLander,
		FilterSolarDay:       opts.FilterSolarDay,
		AutoRotate:           !opts.NoAutoRotate,
		DryRun:               opts.DryRun,
		GenerateMetadata:     opts.GenerateMetadata,
		IgnoreBadFiles:       opts.IgnoreBadFiles,
		Interlace:            opts.Interlace,
		Jobs:                 opts.Jobs,
		NoReconstruct:        opts.NoReconstruct,
		Overwrite:            opts.Overwrite,
		Recursive:            opts.Recursive,
		SummarizeOnly:        opts.SummarizeOnly,
	}

	assembler := assemble.New(opts.Args.Input, opts.Args.Output, runOpts)
	if opts.SummarizeOnly {
		assembler.Progress = func(phase string, done, total int) {
			percent := float64(done) / float64(total) * 100
			switch phase {
			case "catalogue":
				fmt.Printf("\rstudying catalogue of %d/%d (%.0f %%)", done, total, percent)
			case "recover":
				fmt.Printf("\rattempting reconstruction %d/%d (%.0f %%)", done, total, percent)
			}
			if done == total {
				fmt.Println()
			}
		}
	}

	summary, err := assembler.Run()
	if err != nil {
		log.Error("fatal", log.F("error", err))
		if opts.SummarizeOnly {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}

	if opts.SummarizeOnly {
		fmt.Printf("examined %d, reconstructed %d/%d, dumped %d band(s)\n",
			summary.Examined, summary.Reconstructed, summary.Attempted, summary.DumpedBands)
	}
	return 0
}

// configureLogging installs a zerolog console sink honouring the
// verbosity flags.
func configureLogging(opts *options) {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: opts.NoAnsiColours}
	level := zerolog.InfoLevel
	switch {
	case opts.SummarizeOnly:
		level = zerolog.Disabled
	case opts.Suppress:
		level = zerolog.ErrorLevel
	case opts.Verbose:
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	log.SetLogger(log.NewZerologAdapter(zlog))
}
