package domain

import (
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsAddress reports whether s is a single syntactically valid email address
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ExtractAddresses returns every valid address found in free-form text,
// in order of appearance. Duplicates are kept.
func ExtractAddresses(text string) []string {
	var result []string
	for _, word := range strings.Fields(strings.ReplaceAll(text, ",", " ")) {
		if IsAddress(word) {
			result = append(result, word)
		}
	}
	return result
}

// MergeAddresses keeps the valid entries of an explicit list, followed by
// the addresses found in text
func MergeAddresses(addresses []string, text string) []string {
	var result []string
	for _, a := range addresses {
		if a = strings.TrimSpace(a); IsAddress(a) {
			result = append(result, a)
		}
	}
	return append(result, ExtractAddresses(text)...)
}
