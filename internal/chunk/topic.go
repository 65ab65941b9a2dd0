package chunk

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeadingRunes = 80
	maxHeadingWords = 10
	minTopicRunes   = 5
)

var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {}, "among": {},
	"because": {}, "before": {}, "being": {}, "below": {}, "between": {}, "could": {},
	"during": {}, "every": {}, "first": {}, "however": {}, "other": {}, "their": {},
	"there": {}, "these": {}, "those": {}, "through": {}, "under": {}, "until": {},
	"where": {}, "which": {}, "while": {}, "would": {}, "should": {}, "still": {},
	"therefore": {}, "within": {}, "without": {}, "section": {},
}

// TopicHint derives a short topic label: a heading-like first line when
// present, otherwise the most frequent content word.
func TopicHint(text string) string {
	if h := headingLine(text); h != "" {
		return h
	}

	counts := map[string]int{}
	for _, f := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) && r != '-' }) {
		w := strings.ToLower(strings.Trim(f, "-"))
		if utf8.RuneCountInString(w) < minTopicRunes {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return ""
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	return words[0]
}

func headingLine(text string) string {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(rest) == "" {
		return ""
	}
	line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(first), "#"))
	if line == "" || utf8.RuneCountInString(line) > maxHeadingRunes || len(strings.Fields(line)) > maxHeadingWords {
		return ""
	}
	if strings.ContainsAny(line[len(line)-1:], ".!?,;") {
		return ""
	}
	if strings.IndexFunc(line, unicode.IsLetter) < 0 {
		return ""
	}
	return line
}
