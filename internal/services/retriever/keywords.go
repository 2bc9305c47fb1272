package retriever

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	latinWordPattern = regexp.MustCompile(`[a-zA-Z]+`)
	digitRunPattern  = regexp.MustCompile(`[0-9]+`)
)

// tokenize extracts search terms: CJK characters individually, Latin words by
// word boundary (lowercased), and digit runs
func tokenize(text string) []string {
	var tokens []string

	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			tokens = append(tokens, string(r))
		}
	}
	for _, word := range latinWordPattern.FindAllString(text, -1) {
		tokens = append(tokens, strings.ToLower(word))
	}
	tokens = append(tokens, digitRunPattern.FindAllString(text, -1)...)

	return tokens
}

// queryKeywords builds the query keyword set: the top maxKeywords terms by
// frequency, weighted by freq/maxFreq
func queryKeywords(query string, maxKeywords int) map[string]float64 {
	counts := map[string]int{}
	for _, token := range tokenize(query) {
		counts[token]++
	}
	if len(counts) == 0 {
		return nil
	}

	type termFreq struct {
		term string
		freq int
	}
	terms := make([]termFreq, 0, len(counts))
	maxFreq := 0
	for term, freq := range counts {
		terms = append(terms, termFreq{term, freq})
		if freq > maxFreq {
			maxFreq = freq
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].freq != terms[j].freq {
			return terms[i].freq > terms[j].freq
		}
		return terms[i].term < terms[j].term
	})
	if maxKeywords > 0 && len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}

	keywords := make(map[string]float64, len(terms))
	for _, t := range terms {
		keywords[t.term] = float64(t.freq) / float64(maxFreq)
	}
	return keywords
}

// keywordScore scores content against the query keyword set as the mean of a
// saturating term-frequency function: weight * (1 + count/(count+2)).
// Repeated occurrence is rewarded with diminishing returns.
func keywordScore(content string, keywords map[string]float64) float64 {
	if len(keywords) == 0 {
		return 0
	}

	counts := map[string]int{}
	for _, token := range tokenize(content) {
		if _, ok := keywords[token]; ok {
			counts[token]++
		}
	}

	var sum float64
	for term, weight := range keywords {
		count := counts[term]
		if count == 0 {
			continue
		}
		sum += weight * (1 + float64(count)/float64(count+2))
	}
	return sum / float64(len(keywords))
}
