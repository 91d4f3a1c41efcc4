package logic

// Scale factors found in deployed firmware for the same LM35/ADC0804
// pairing. They differ by 10x and neither is applied by default.
const (
	ScaleFactorA = 0.196
	ScaleFactorB = 1.953
)

// Convert maps a raw ADC count to degrees C.
func Convert(raw uint8, scaleFactor float64) float64 {
	return float64(raw) * scaleFactor
}

// ScaleFactor derives degrees C per count from the ADC reference voltage,
// its resolution and the sensor sensitivity.
func ScaleFactor(vrefVolts float64, bits uint, mvPerDegree float64) float64 {
	if bits == 0 || mvPerDegree == 0 {
		return 0
	}
	mvPerCount := vrefVolts * 1000 / float64(uint64(1)<<bits)
	return mvPerCount / mvPerDegree
}
