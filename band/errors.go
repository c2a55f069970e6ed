package band

import "errors"

// Decode failure kinds. Each band load ends with ok or with exactly one
// of these (possibly wrapped with file context); the assembler decides
// whether a failure aborts the run or just skips the band.
var (
	ErrEmpty               = errors.New("empty file, probably blank magnetic tape or not received back on Earth")
	ErrTooSmall            = errors.New("too small to be interesting (< 4 KB)")
	ErrHeaderCorrupt       = errors.New("header is not intact, or not a VICAR file")
	ErrNotVikingLander     = errors.New("did not originate from a Viking Lander")
	ErrCalibrationShot     = errors.New("internal radio/geometric calibration")
	ErrUnsupportedDiode    = errors.New("unsupported photosensor diode band type")
	ErrUnknownHeaderFormat = errors.New("exhausted basic metadata parser heuristics")
	ErrInvalidLabel        = errors.New("invalid logical record label")
	ErrOutOfPhaseBoundary  = errors.New("invalid logical record label possibly from out of phase physical boundary")
	ErrFileTooSmall        = errors.New("file too small to contain claimed payload")
	ErrFiltered            = errors.New("filtered")
	ErrNoCameraEvent       = errors.New("camera event doesn't identify itself, cannot index")
)
