// Package money parses loosely typed prices and formats rouble amounts.
package money

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencySuffix = " ₽"

var printer = message.NewPrinter(language.Russian)

var priceNoise = strings.NewReplacer(
	"&nbsp;", "",
	"\u00a0", "",
	"\u202f", "",
	"₽", "",
	"руб.", "",
)

// Parse coerces a price from whatever a JSON document or an HTML label held.
// Numbers pass through, strings like "1 500 ₽" or "12,5" are cleaned and
// parsed, everything else is 0. Non-finite results are 0.
func Parse(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		f, _ = strconv.ParseFloat(string(x), 64)
	case string:
		f = ParseString(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func ParseString(s string) float64 {
	s = priceNoise.Replace(s)
	s = strings.Join(strings.Fields(s), "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Format renders an amount with Russian digit grouping and the rouble sign.
func Format(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2))) + currencySuffix
}

// LineTotal is price*qty without binary float drift.
func LineTotal(price float64, qty int) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Float64()
	return f
}

// Sum adds amounts exactly.
func Sum(vals ...float64) float64 {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}
