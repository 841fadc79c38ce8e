// Package quality measures the distortion an embedding introduced
package quality

import (
	"math"
	"strconv"
)

// MaxSignal is the peak of a normalized sample.
const MaxSignal = 1.0

// CalculatePSNR returns the peak signal-to-noise ratio in dB between two
// normalized signals of equal length. Identical signals give +Inf; signals
// of different length, or empty ones, give 0.
func CalculatePSNR(original, stego []float64) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := original[i] - stego[i]
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX / sqrt(MSE))
	return 20 * math.Log10(MaxSignal/math.Sqrt(mse))
}

// FormatPSNR renders a PSNR value for an HTTP header.
func FormatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return strconv.FormatFloat(psnr, 'f', 2, 64)
}

// ValidatePSNR reports whether psnr reaches threshold dB.
func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
