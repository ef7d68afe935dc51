// Package weight converts between stored grams and the kilogram values users
// type and read. Weights are always stored as whole grams.
package weight

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// GramsToKg converts whole grams to kilograms.
func GramsToKg(grams int64) float64 {
	return float64(grams) / 1000
}

// KgToGrams converts kilograms to the nearest whole gram.
func KgToGrams(kg float64) int64 {
	return int64(math.Round(kg * 1000))
}

// Format renders a weight for display. Zero renders as the empty string,
// anything under 0.1 kg as raw grams ("80g") and the rest as one-decimal
// kilograms ("1.3kg").
//
// Kilograms round on their float64 value, so 1150 g (1.1499999... kg)
// renders as "1.1kg". Exact halves such as 1250 g round up.
func Format(grams int64) string {
	if grams == 0 {
		return ""
	}
	kg := GramsToKg(grams)
	if kg < 0.1 {
		return fmt.Sprintf("%dg", grams)
	}
	// Only multiples of 1/8 kg are exact in binary; of those, 250 mod 500
	// sit exactly on a tenth boundary.
	if grams%500 == 250 {
		tenths := (grams + 50) / 100
		return fmt.Sprintf("%d.%dkg", tenths/10, tenths%10)
	}
	return strconv.FormatFloat(kg, 'f', 1, 64) + "kg"
}

// FormatOptional formats a possibly absent weight; absent renders as "".
func FormatOptional(grams optional.Value[int64]) string {
	return Format(grams.OrElse(0))
}

// ParseToGrams parses kilogram text into whole grams. Non-numeric input and
// values <= 0 are absent.
func ParseToGrams(text string) optional.Value[int64] {
	kg, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(kg) || math.IsInf(kg, 0) || kg <= 0 {
		return optional.None[int64]()
	}
	return optional.Some(KgToGrams(kg))
}
