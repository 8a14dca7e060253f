package signal

// GroundLevel estimates the resting ground reference as the mean of the
// trailing window of the filtered position trace. Drop-jump traces are not
// zero-referenced, so every height downstream is measured against this
// subject-and-trial-specific baseline.
//
// The trailing window represents quiet standing after the final landing.
// When the requested window exceeds the series, the whole series is used
// instead; the estimate degrades but the trial is never failed for it.
func GroundLevel(position []float64, sampleRate, windowSeconds float64) float64 {
	if len(position) == 0 {
		return 0
	}

	n := int(windowSeconds * sampleRate)
	if n <= 0 || n > len(position) {
		n = len(position)
	}

	var sum float64
	for _, v := range position[len(position)-n:] {
		sum += v
	}
	return sum / float64(n)
}
