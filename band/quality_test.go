package band

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gradedBand(diode Diode, axis, histogram bool, width, height int, mean float64) *Band {
	return &Band{
		Diode:                diode,
		AxisPresent:          axis,
		FullHistogramPresent: histogram,
		Width:                width,
		Height:               height,
		MeanPixelValue:       mean,
	}
}

func TestLessPrefersNoAxis(t *testing.T) {
	withAxis := gradedBand(Red, true, false, 512, 512, 200)
	without := gradedBand(Red, false, false, 512, 512, 10)

	assert.True(t, Less(withAxis, without))
	assert.False(t, Less(without, withAxis))
}

func TestLessPrefersNoHistogram(t *testing.T) {
	withHist := gradedBand(Red, true, true, 512, 512, 200)
	axisOnly := gradedBand(Red, true, false, 512, 512, 10)

	assert.True(t, Less(withHist, axisOnly))
	assert.False(t, Less(axisOnly, withHist))
}

func TestLessColourPrefersBrighter(t *testing.T) {
	dim := gradedBand(Green, false, false, 512, 512, 40)
	bright := gradedBand(Green, false, false, 100, 100, 90)

	assert.True(t, Less(dim, bright), "brighter wins regardless of area for colour bands")
	assert.False(t, Less(bright, dim))
}

func TestLessSurveyPrefersLargerArea(t *testing.T) {
	// Two survey bands with identical overlay flags: the 512x512 one
	// covers fewer pixels than the 600x500 one and ranks below it.
	small := gradedBand(Survey, false, false, 512, 512, 250)
	large := gradedBand(Survey, false, false, 600, 500, 5)

	assert.True(t, Less(small, large))
	assert.False(t, Less(large, small))
}

func TestLessSunAreaTieFallsBackToBrightness(t *testing.T) {
	dim := gradedBand(Sun, false, false, 514, 512, 10)
	bright := gradedBand(Sun, false, false, 514, 512, 20)

	assert.True(t, Less(dim, bright))
	assert.False(t, Less(bright, dim))
}

func TestLessStrictWeakOrder(t *testing.T) {
	// A mixed population of same-event, same-diode candidates.
	population := []*Band{
		gradedBand(Red, false, false, 512, 512, 10),
		gradedBand(Red, false, false, 512, 512, 90),
		gradedBand(Red, true, false, 512, 512, 50),
		gradedBand(Red, true, true, 512, 512, 70),
		gradedBand(Red, true, true, 512, 512, 20),
		gradedBand(Red, false, false, 600, 500, 90),
	}

	for i, a := range population {
		assert.False(t, Less(a, a), "irreflexive at %d", i)
		for j, b := range population {
			if Less(a, b) {
				assert.False(t, Less(b, a), "asymmetric at %d,%d", i, j)
			}
			for k, c := range population {
				if Less(a, b) && Less(b, c) {
					assert.True(t, Less(a, c), "transitive at %d,%d,%d", i, j, k)
				}
			}
		}
	}
}

func TestSortLeavesBestLast(t *testing.T) {
	vanillaBright := gradedBand(Blue, false, false, 512, 512, 88)
	vanillaDim := gradedBand(Blue, false, false, 512, 512, 12)
	axisOnly := gradedBand(Blue, true, false, 512, 512, 99)
	histogram := gradedBand(Blue, true, true, 512, 512, 99)

	list := []*Band{axisOnly, vanillaBright, histogram, vanillaDim}
	sort.SliceStable(list, func(i, j int) bool { return Less(list[i], list[j]) })

	assert.Same(t, vanillaBright, list[len(list)-1], "vanilla bright band sorts best")
	assert.Same(t, histogram, list[0], "full histogram band sorts worst")
}
