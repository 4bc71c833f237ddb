package exposure

import "github.com/shopspring/decimal"

// round rounds half away from zero to places decimals.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
