// Package areo maps Martian solar day counts to solar longitude (Ls) and
// the Martian month a camera event falls in.
//
// The orbital arithmetic follows the historical extraction pipeline
// exactly, including its known wobble near sol 193 (reported as Leo where
// Virgo is expected). Do not "fix" the Kepler solution here without
// re-verifying the whole remastered archive against it.
package areo

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/unit"
)

// SolsPerYear is the number of Martian solar days in a Martian year.
const SolsPerYear = 668.5991

const (
	perihelionDay = 485.35
	perihelionLs  = 250.99
	eccentricity  = 0.0934
)

// Months of the Martian calendar in Ls order, each spanning 30 degrees of
// solar longitude starting at Gemini = [0, 30].
var Months = [12]string{
	"Gemini", "Cancer", "Leo", "Virgo", "Libra", "Scorpius",
	"Sagittarius", "Capricorn", "Aquarius", "Pisces", "Aries", "Taurus",
}

// LanderEpoch returns the absolute solar day of the local midnight
// immediately preceding the lander's touchdown. Lander 1 landed on
// June 20 1976 (sol 199), lander 2 on September 3 1976 (sol 242).
// Unknown lander numbers yield zero.
func LanderEpoch(lander int) int {
	switch lander {
	case 1:
		return 199
	case 2:
		return 242
	default:
		return 0
	}
}

// SolToLs converts an absolute Martian solar day in the range [1, n] to
// the angle of solar longitude.
func SolToLs(solarDay int) unit.Angle {
	// Mean anomaly from the fraction of the orbit since perihelion.
	z := (float64(solarDay) - perihelionDay) / SolsPerYear
	signedMean := 2 * math.Pi * (z - math.Round(z))
	mean := math.Abs(signedMean)

	// Solve Kepler's equation M = E - e*sin(E) by Newton iteration.
	eccentric := mean + eccentricity*math.Sin(mean)
	for {
		delta := -(eccentric - eccentricity*math.Sin(eccentric) - mean) /
			(1 - eccentricity*math.Cos(eccentric))
		eccentric += delta
		if math.Abs(delta) <= 1.0e-6 {
			break
		}
	}
	if signedMean < 0 {
		eccentric = -eccentric
	}

	trueAnomaly := 2 * math.Atan(math.Sqrt((1+eccentricity)/(1-eccentricity))*
		math.Tan(eccentric/2))

	timePerihelion := 2 * math.Pi * (1 - perihelionLs/360)
	ls := base.PMod(trueAnomaly-timePerihelion, 2*math.Pi)
	return unit.Angle(ls)
}

// Month maps an Ls angle to its Martian month.
func Month(ls unit.Angle) string {
	deg := ls.Deg()
	for i, name := range Months {
		if deg <= float64(i+1)*30 {
			return name
		}
	}
	return Months[11]
}

// MonthForSol returns the Martian month of the given mission solar day,
// counted from the given lander's touchdown.
func MonthForSol(lander, solarDay int) string {
	epoch := LanderEpoch(lander)
	yearDay := 1 + int(math.Mod(float64(epoch+solarDay), SolsPerYear))
	return Month(SolToLs(yearDay))
}

// monthEnds are the first solar days beyond each Martian month, counted
// within one Martian year.
var monthEnds = [12]int{62, 127, 193, 258, 318, 372, 422, 469, 515, 563, 614, 669}

// DayOfMonth returns the day within its Martian month that the given
// absolute solar day falls on, starting from one.
func DayOfMonth(solarDay int) int {
	clamped := int(math.Mod(float64(solarDay), SolsPerYear))
	if clamped < monthEnds[0] {
		return clamped
	}
	for i := 1; i < len(monthEnds); i++ {
		if clamped < monthEnds[i] {
			return clamped - monthEnds[i-1] + 1
		}
	}
	return clamped - monthEnds[10] + 1
}
