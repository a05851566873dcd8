package output

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money renders a dollar amount rounded half away from zero to cents
func Money(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	if rounded < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -rounded)
	}
	return "$" + humanize.FormatFloat("#,###.##", rounded)
}

// PerSF renders a cost per square foot
func PerSF(v float64) string {
	return Money(v) + "/SF"
}

// Area renders square footage with separators
func Area(v float64) string {
	return humanize.Commaf(decimal.NewFromFloat(v).Round(0).InexactFloat64()) + " SF"
}

// Percent renders a ratio as a percentage
func Percent(ratio float64) string {
	return humanize.FormatFloat("#,###.#", ratio*100) + "%"
}

// Factor renders a multiplier
func Factor(v float64) string {
	return decimal.NewFromFloat(v).Round(3).String() + "x"
}
