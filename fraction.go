package pedigree

import (
	"fmt"
	"math"

	"github.com/carbocation/pfx"
)

// maxPartialQuotient keeps partial quotients, and the convergents built from
// them, inside int64.
const maxPartialQuotient = 1 << 62

// Fraction approximates a probability by a small fraction via its continued
// fraction expansion, for display: 0.333... becomes 1/3. Expansion stops at
// the first large partial quotient, which is where floating point noise
// usually starts. Probabilities too small for 1/n come out as 0/1.
func Fraction(prob float64) (numerator, denominator int64, err error) {
	if !(prob >= 0 && prob <= 1) {
		return 0, 0, pfx.Err(fmt.Errorf("probability %v must be between 0 and 1", prob))
	}
	if prob == 0 {
		return 0, 1, nil
	}
	if prob == 1 {
		return 1, 1, nil
	}

	x := prob
	term := math.Floor(x)
	terms := []int64{int64(term)}
	x -= term
	if x == 0 {
		numerator, denominator = convergent(terms)
		return
	}

	x = 1 / x
	term = math.Floor(x)
	if term >= maxPartialQuotient {
		// Too small to show as 1/n.
		return 0, 1, nil
	}
	terms = append(terms, int64(term))
	if term > 20 {
		numerator, denominator = convergent(terms)
		return
	}

	for remainder := x - term; remainder > 1e-12; remainder = x - term {
		x = 1 / remainder
		term = math.Floor(x)
		if term > 10 {
			// Keep one more term for values just below 1, whose expansion is
			// [0; 1, n].
			sig := terms
			if sig[0] == 0 {
				sig = sig[1:]
			}
			if len(sig) == 1 && sig[0] == 1 && term < maxPartialQuotient {
				terms = append(terms, int64(term))
			}
			break
		}
		terms = append(terms, int64(term))
	}

	numerator, denominator = convergent(terms)
	return
}

func convergent(terms []int64) (int64, int64) {
	var num, den int64 = 1, 0
	for i := len(terms) - 1; i >= 0; i-- {
		num, den = den+terms[i]*num, num
	}
	return num, den
}

// FormatFraction renders prob as "n/d", or "?" when it is not a probability.
func FormatFraction(prob float64) string {
	n, d, err := Fraction(prob)
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%d/%d", n, d)
}
