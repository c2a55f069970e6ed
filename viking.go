// Package viking recovers scientific imagery from the archival VICAR
// band files the two Viking Lander spacecraft returned between 1976 and
// 1982. This file is a facade re-exporting the working types from the
// sub-packages; the pipeline itself lives in record (EBCDIC logical
// records), stream (loose files and zip members), band (the VICAR
// decoder and quality order), ocr (rotation and overlay classification),
// raster (geometry), areo (solar longitude), assemble (camera event
// catalogue and reconstruction) and output (PNG and sidecar writing).
package viking

import (
	"github.com/planum-obs/viking/assemble"
	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/raster"
)

// Core decoding types.
type (
	Band          = band.Band
	Diode         = band.Diode
	DecodeOptions = band.DecodeOptions
	Rotation      = raster.Rotation
	Matrix        = raster.Matrix
)

// Assembly types.
type (
	Assembler            = assemble.Assembler
	Options              = assemble.Options
	Summary              = assemble.Summary
	ReconstructableImage = assemble.ReconstructableImage
	ProgressFunc         = assemble.ProgressFunc
)

// Diode band types.
const (
	DiodeUnknown = band.DiodeUnknown
	Broadband1   = band.Broadband1
	Broadband2   = band.Broadband2
	Broadband3   = band.Broadband3
	Broadband4   = band.Broadband4
	Red          = band.Red
	Green        = band.Green
	Blue         = band.Blue
	Infrared1    = band.Infrared1
	Infrared2    = band.Infrared2
	Infrared3    = band.Infrared3
	Sun          = band.Sun
	Survey       = band.Survey
)

// Rotations, counter-clockwise.
const (
	RotateNone = raster.RotateNone
	Rotate90   = raster.Rotate90
	Rotate180  = raster.Rotate180
	Rotate270  = raster.Rotate270
)

// NewBand constructs an unloaded band from a path; call Load on it.
func NewBand(path string) *Band {
	return band.New(path)
}

// NewAssembler prepares a run over the given input file or directory.
func NewAssembler(input, outputDir string, opts *Options) *Assembler {
	return assemble.New(input, outputDir, opts)
}

// DefaultOptions returns the options a bare command line implies.
func DefaultOptions() *Options {
	return assemble.DefaultOptions()
}
