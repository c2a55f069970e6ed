package band

// Less establishes the quality order between two bands sharing a camera
// event and diode type: it reports whether a ranks below b. Sorting a
// list with it leaves the best candidate at the end.
//
// The rules, in order: a band without an axis overlay beats one with it;
// a band without the full histogram block beats one with it (more image
// area survives); among colour and infrared bands the brighter centre
// wins; among broadband, sun and survey bands the larger capture wins,
// brightness breaking ties.
func Less(a, b *Band) bool {
	if a.AxisPresent != b.AxisPresent {
		return a.AxisPresent
	}
	if a.FullHistogramPresent != b.FullHistogramPresent {
		return a.FullHistogramPresent
	}
	if a.Diode.ColourOrInfrared() {
		return a.MeanPixelValue < b.MeanPixelValue
	}
	if a.PixelArea() != b.PixelArea() {
		return a.PixelArea() < b.PixelArea()
	}
	return a.MeanPixelValue < b.MeanPixelValue
}
