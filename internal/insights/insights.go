// Package insights derives cheap, model-free statistics from article text.
package insights

import (
	"regexp"
	"sort"
	"strings"

	"github.com/russross/blackfriday/v2"
)

const wordsPerMinute = 200

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
}

const keywordPunctuation = `.,!?";()[]{}`

// Insights summarizes the shape of an article.
type Insights struct {
	WordCount          int      `json:"word_count"`
	SentenceCount      int      `json:"sentence_count"`
	Keywords           []string `json:"keywords"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
}

// Analyze computes word, sentence and keyword statistics for text.
func Analyze(text string) Insights {
	words := len(strings.Fields(text))
	return Insights{
		WordCount:          words,
		SentenceCount:      len(sentences(text)),
		Keywords:           Keywords(text, 5),
		ReadingTimeMinutes: max(1, words/wordsPerMinute),
	}
}

// Summary returns the first maxSentences sentences followed by ". ..", or
// text unchanged when it is already that short.
func Summary(text string, maxSentences int) string {
	s := sentences(text)
	if len(s) <= maxSentences {
		return text
	}
	return strings.Join(s[:maxSentences], ". ") + ". .."
}

// Keywords returns up to n of the most frequent non-stop-words longer than
// three characters. Ties keep first-seen order.
func Keywords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if stopWords[w] || len([]rune(w)) <= 3 {
			continue
		}
		w = strings.Trim(w, keywordPunctuation)
		if w == "" {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func sentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var (
	markdownLink = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s)]+)\)`)
	bareURL      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
)

// PlainText renders markdown to text with links and URLs removed and
// whitespace collapsed.
func PlainText(input string) string {
	input = markdownLink.ReplaceAllString(input, "$1")
	html := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := htmlTag.ReplaceAllString(string(html), " ")
	text = bareURL.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
