package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// CleanText collapses runs of whitespace into single spaces and strips
// non-printable runes, the way section text comes out of scraped markup.
func CleanText(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	s = whitespaceRegex.ReplaceAllString(out.String(), " ")
	return strings.Trim(s, " \t\n")
}

func CountWords(s string) int {
	return len(strings.Fields(s))
}

var sentenceEndRegex = regexp.MustCompile(`[.!?]+`)

// CountSentences counts terminator-delimited spans that contain at
// least one word.
func CountSentences(s string) int {
	count := 0
	for _, span := range sentenceEndRegex.Split(s, -1) {
		if len(strings.Fields(span)) > 0 {
			count++
		}
	}
	return count
}

func CountRune(s string, r rune) int {
	return strings.Count(s, string(r))
}

// CountAllCapsWords counts words of 2+ letters written entirely in
// uppercase. ("FREE", "NOW", not "I" or "$100")
func CountAllCapsWords(s string) int {
	count := 0
	for _, word := range strings.Fields(s) {
		word = strings.Trim(word, ".,!?:;\"'()")
		if len(word) < 2 {
			continue
		}
		allCaps := true
		for _, c := range word {
			if !unicode.IsUpper(c) {
				allCaps = false
				break
			}
		}
		if allCaps {
			count++
		}
	}
	return count
}

var numeralRegex = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

func CountNumerals(s string) int {
	return len(numeralRegex.FindAllString(s, -1))
}

var moneyRegex = regexp.MustCompile(`[$€£¥]\s?\d`)

func CountMoneyMentions(s string) int {
	return len(moneyRegex.FindAllString(s, -1))
}
