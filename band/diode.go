package band

import (
	"sort"

	"github.com/samber/lo"
)

// Diode identifies the photosensor array element a band was captured
// through.
type Diode int

const (
	DiodeUnknown Diode = iota
	Broadband1
	Broadband2
	Broadband3
	Broadband4
	Red
	Green
	Blue
	Infrared1
	Infrared2
	Infrared3
	Sun
	Survey
)

var diodeNames = map[Diode]string{
	DiodeUnknown: "Unknown",
	Broadband1:   "Broadband1",
	Broadband2:   "Broadband2",
	Broadband3:   "Broadband3",
	Broadband4:   "Broadband4",
	Red:          "Red",
	Green:        "Green",
	Blue:         "Blue",
	Infrared1:    "Infrared1",
	Infrared2:    "Infrared2",
	Infrared3:    "Infrared3",
	Sun:          "Sun",
	Survey:       "Survey",
}

func (d Diode) String() string {
	if name, ok := diodeNames[d]; ok {
		return name
	}
	return "Unknown"
}

// Class returns the band-type class the diode contributes to.
func (d Diode) Class() string {
	switch d {
	case Red, Green, Blue:
		return "Colour"
	case Infrared1, Infrared2, Infrared3:
		return "Infrared"
	case Sun:
		return "Sun"
	case Survey:
		return "Survey"
	case Broadband1, Broadband2, Broadband3, Broadband4:
		return "Broadband"
	}
	return ""
}

// ColourOrInfrared reports whether the diode is one of the six narrow
// band types that carry overlay annotations worth examining visually.
func (d Diode) ColourOrInfrared() bool {
	switch d {
	case Red, Green, Blue, Infrared1, Infrared2, Infrared3:
		return true
	}
	return false
}

// diodeTokens maps the VICAR label tokens (case-sensitive, as written by
// the ground pipeline) to diode types.
var diodeTokens = map[string]Diode{
	"RED":    Red,
	"RED/S":  Red,
	"RED/T":  Red,
	"GRN":    Green,
	"GREEN":  Green,
	"GRN/S":  Green,
	"GRN/T":  Green,
	"BLU":    Blue,
	"BLUE":   Blue,
	"BLU/S":  Blue,
	"BLU/T":  Blue,
	"IR1":    Infrared1,
	"IR1/T":  Infrared1,
	"IR2":    Infrared2,
	"IR2/T":  Infrared2,
	"IR3":    Infrared3,
	"IR3/T":  Infrared3,
	"SUN":    Sun,
	"SUR":    Survey,
	"SURV":   Survey,
	"SURV/S": Survey,
	"SURVEY": Survey,
	"BB1":    Broadband1,
	"BB1/S":  Broadband1,
	"BB2":    Broadband2,
	"BB2/S":  Broadband2,
	"BB3":    Broadband3,
	"BB3/S":  Broadband3,
	"BB4":    Broadband4,
	"BB4/S":  Broadband4,
}

// DiodeFromToken looks the token up in the VICAR label vocabulary.
func DiodeFromToken(token string) (Diode, bool) {
	d, ok := diodeTokens[token]
	return d, ok
}

// KnownDiodeTokens returns the recognised label tokens, sorted.
func KnownDiodeTokens() []string {
	tokens := lo.Keys(diodeTokens)
	sort.Strings(tokens)
	return tokens
}
