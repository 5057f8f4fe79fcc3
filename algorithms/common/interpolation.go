package common

// InterpolateLinear samples data at a fractional index.
// Indices below 0 return data[0]; indices at or past the last bin return
// the last value.
func InterpolateLinear(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	return Lerp(data[i], data[i+1], frac)
}
