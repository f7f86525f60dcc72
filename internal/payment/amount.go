package payment

import "math"

// Currencies whose minor unit equals the major unit. MIXX expects whole units
// for these and hundredths (x100) for everything else.
var zeroDecimalCurrencies = map[string]struct{}{
	"TZS": {},
	"UGX": {},
	"RWF": {},
	"BIF": {},
	"JPY": {},
}

func ToMinorUnits(amount float64, currency string) int64 {
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(minor int64, currency string) float64 {
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return float64(minor)
	}
	return float64(minor) / 100
}
