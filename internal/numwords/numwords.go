// Package numwords converts integer amounts to their English words form for
// receipt text.
package numwords

import (
	"fmt"
	"strings"
)

// Max is the largest supported amount: the Trillion scale covers everything
// below one Quadrillion.
const Max = 999_999_999_999_999

var ones = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

var scales = [...]string{"", "Thousand", "Million", "Billion", "Trillion"}

// ToWords returns the English words for n, e.g. 1500 -> "One Thousand Five
// Hundred". Zero is "Zero". Negative values and values above Max are errors.
func ToWords(n int64) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("amount must not be negative, got %d", n)
	}
	if n > Max {
		return "", fmt.Errorf("amount %d exceeds supported maximum %d", n, int64(Max))
	}
	if n == 0 {
		return "Zero", nil
	}

	var chunks []int
	for n > 0 {
		chunks = append(chunks, int(n%1000))
		n /= 1000
	}

	var parts []string
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i] == 0 {
			continue
		}
		part := chunkWords(chunks[i])
		if scales[i] != "" {
			part += " " + scales[i]
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

// chunkWords spells a value in [1, 999].
func chunkWords(n int) string {
	switch {
	case n < 20:
		return ones[n]
	case n < 100:
		w := tens[n/10]
		if n%10 != 0 {
			w += "-" + ones[n%10]
		}
		return w
	default:
		w := ones[n/100] + " Hundred"
		if rest := n % 100; rest != 0 {
			w += " " + chunkWords(rest)
		}
		return w
	}
}
