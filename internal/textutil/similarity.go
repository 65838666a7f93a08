package textutil

import "strings"

// DiceSimilarity computes the Sørensen–Dice coefficient over character
// bigrams of the two strings, in [0, 1]. Whitespace is removed before
// pairing, so "night owl" and "nightowl" compare equal. Strings shorter than
// two characters only match when identical.
func DiceSimilarity(first, second string) float64 {
	first = removeSpaces(first)
	second = removeSpaces(second)

	if first == second {
		return 1
	}

	a := []rune(first)
	b := []rune(second)
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a)-1)
	for i := 0; i < len(a)-1; i++ {
		bigrams[string(a[i:i+2])]++
	}

	var intersection int
	for i := 0; i < len(b)-1; i++ {
		pair := string(b[i : i+2])
		if bigrams[pair] > 0 {
			bigrams[pair]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)+len(b)-2)
}

func removeSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
