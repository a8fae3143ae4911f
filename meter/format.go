package meter

import "strconv"

// FormatPeak renders a peak-hold level for display: one decimal at or
// below -10 dB, two above, where the extra digit is still readable.
func FormatPeak(peakDB float64) string {
	precision := 2
	if peakDB <= -10 {
		precision = 1
	}

	return strconv.FormatFloat(peakDB, 'f', precision, 64)
}
