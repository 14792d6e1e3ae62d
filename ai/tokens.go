package ai

import "unicode/utf8"

// EstimateTokens approximates a prompt's token count at four characters per
// token, rounding up.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
