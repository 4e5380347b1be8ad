// Package sentiment scores ticket bodies into POS/NEU/NEG using weighted
// token and phrase lists. Deterministic, no external services.
package sentiment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qazfin/fireroute/engine/model"
)

// negWeight is how many positive hits a single negative hit cancels.
const negWeight = 2

// minInputLen: anything shorter is neutral by definition.
const minInputLen = 3

var positiveTokens = map[string]struct{}{
	"хорошо": {}, "отлично": {}, "спасибо": {}, "благодарю": {},
	"помогли": {}, "решили": {}, "доволен": {}, "довольна": {},
	"рад": {}, "рада": {}, "быстро": {}, "удобно": {}, "работает": {},
	"успешно": {}, "замечательно": {}, "прекрасно": {},
	"thank": {}, "thanks": {}, "good": {}, "great": {}, "excellent": {},
	"perfect": {}, "awesome": {}, "helpful": {}, "resolved": {},
	"satisfied": {}, "happy": {},
	"рахмет": {}, "жақсы": {}, "жаксы": {},
}

var negativeTokens = map[string]struct{}{
	"плохо": {}, "ужасно": {}, "ошибка": {}, "проблема": {}, "жалоба": {},
	"мошенник": {}, "обман": {}, "украли": {}, "недоволен": {},
	"недовольна": {}, "злой": {}, "злая": {}, "отвратительно": {},
	"безобразие": {}, "верните": {}, "требую": {}, "претензия": {},
	"сбой": {}, "баг": {}, "зависает": {}, "невозможно": {},
	"задержка": {}, "долго": {},
	"bad": {}, "terrible": {}, "horrible": {}, "fraud": {}, "scam": {},
	"stolen": {}, "error": {}, "broken": {}, "issue": {}, "problem": {},
	"angry": {},
	"жаман": {}, "нашар": {},
}

type weightedPhrase struct {
	phrase string
	weight int
}

// Multi-word phrases checked as substrings of the lowered body.
var (
	positivePhrases = []weightedPhrase{
		{"все отлично", 2},
		{"большое спасибо", 2},
		{"очень доволен", 2},
		{"өте жақсы", 2},
		{"оте жаксы", 2},
	}
	negativePhrases = []weightedPhrase{
		{"не работает", 2},
		{"не открывается", 2},
		{"не могу", 1},
		{"плохой сервис", 3},
		{"без моего ведома", 3},
		{"очень плохо", 2},
		{"хуже некуда", 4},
	}
)

var tokenRe = regexp.MustCompile(`[а-яёa-zәіңғүұқөһ]+`)

// Engine classifies sentiment. Stateless and safe for concurrent use.
type Engine struct{}

// NewEngine returns a ready sentiment engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze returns POS when the net score is positive, NEG when negative,
// NEU otherwise. Inputs shorter than three characters are neutral.
func (e *Engine) Analyze(text string) model.Sentiment {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minInputLen {
		return model.SentimentNeutral
	}

	lowered := strings.ToLower(text)

	var pos, neg int
	for _, token := range tokenRe.FindAllString(lowered, -1) {
		if _, ok := positiveTokens[token]; ok {
			pos++
		}
		if _, ok := negativeTokens[token]; ok {
			neg++
		}
	}
	for _, wp := range positivePhrases {
		if strings.Contains(lowered, wp.phrase) {
			pos += wp.weight
		}
	}
	for _, wp := range negativePhrases {
		if strings.Contains(lowered, wp.phrase) {
			neg += wp.weight
		}
	}

	net := pos - neg*negWeight
	switch {
	case net > 0:
		return model.SentimentPositive
	case net < 0:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
