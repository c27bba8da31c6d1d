// Package prompt renders the fixed instruction templates sent to model backends.
package prompt

import (
	"fmt"
	"strings"
)

// ArticleLimit is the number of characters of an article embedded in a prompt.
const ArticleLimit = 4000

// Truncate trims text and caps it at limit characters, marking a cut with " ...".
func Truncate(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return strings.TrimRight(string(runes[:limit]), " \t\r\n") + " ..."
}

const rhetoricTemplate = `Analyze this news article for tone and rhetorical devices.

Article:
%s

Provide analysis in this format:
1. Overall Tone: (e.g., neutral, persuasive, alarmist, celebratory)
2. Sentiment: (positive, negative, or neutral with confidence score)
3. Rhetorical Devices Found:
   - List specific devices used (metaphors, appeals to emotion, repetition, loaded language, etc.)
   - Quote examples from the text
4. Bias Indicators: Any signs of bias or framing

Analysis:`

const comparisonTemplate = `Compare these two news articles covering similar topics.

Article 1:
%s

Article 2:
%s

Provide comparison in this format:
1. Framing Differences: How does each article frame the story?
2. Tone Comparison: Compare the tone and emotional appeal
3. Source Selection: Note any differences in sources cited or perspectives included
4. Key Differences: What facts or angles does one include that the other doesn't?
5. Bias Assessment: Which article appears more balanced?

Comparison:`

const sentimentTemplate = "You are a sentiment and tone classifier. Return JSON only with no other text.\n" +
	"Article:\n" +
	"%s\n\n" +
	"Classify:\n" +
	"- sentiment: positive, negative, or neutral\n" +
	"- tone: calm | emotional | inflammatory | persuasive | neutral | sarcastic | urgent\n" +
	"- evidence: list of phrases that influenced your classification\n"

// Rhetoric asks for tone, sentiment, rhetorical devices and bias indicators.
func Rhetoric(article string) string {
	return fmt.Sprintf(rhetoricTemplate, Truncate(article, ArticleLimit))
}

// Comparison asks for a framing, tone, sourcing and bias comparison of two articles.
func Comparison(primary, reference string) string {
	return fmt.Sprintf(comparisonTemplate, Truncate(primary, ArticleLimit), Truncate(reference, ArticleLimit))
}

// Sentiment asks for a strict JSON classification with sentiment, tone and evidence.
func Sentiment(text string) string {
	return fmt.Sprintf(sentimentTemplate, text)
}
