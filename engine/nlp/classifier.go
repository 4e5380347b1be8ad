// Package nlp implements keyword-weighted ticket classification and
// heuristic language detection. Fully offline and deterministic.
package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qazfin/fireroute/engine/model"
)

// DefaultCategory is returned when no category reaches the confidence
// threshold.
const DefaultCategory = model.CategoryConsultation

// ConfidenceThreshold is the minimum keyword score a category must reach;
// anything below falls back to DefaultCategory.
const ConfidenceThreshold = 2

// spamLengthGate: spam heuristics apply only to bodies of at least this
// many runes, or bodies carrying a long URL. Short promotional messages
// pass through to keyword scoring.
const spamLengthGate = 200

// spamURLCount: this many long URLs in one body is spam on its own.
const spamURLCount = 3

type weightedKeyword struct {
	keyword string
	weight  int
}

// categoryKeywords holds the weighted keyword table per category.
// Evaluated in model.Categories order; earlier categories win ties.
var categoryKeywords = map[model.Category][]weightedKeyword{
	model.CategoryComplaint: {
		{"жалоба", 3}, {"жалуюсь", 3}, {"недоволен", 2}, {"недовольна", 2},
		{"плохой сервис", 3}, {"complaint", 3}, {"шагым", 3},
	},
	model.CategoryChangeOfData: {
		{"смена", 2}, {"изменить", 2}, {"обновить", 2}, {"поменять", 2},
		{"данные", 1}, {"реквизиты", 2}, {"адрес", 1}, {"телефон", 1},
		{"change data", 2}, {"update", 1}, {"деректерді өзгерту", 3},
	},
	model.CategoryConsultation: {
		{"вопрос", 2}, {"как", 1}, {"подскажите", 2}, {"консультация", 3},
		{"помогите", 1}, {"объясните", 2}, {"question", 2}, {"help", 1},
		{"how to", 2}, {"кеңес", 3},
	},
	model.CategoryClaim: {
		{"претензия", 3}, {"требую", 3}, {"верните", 3}, {"возврат", 2},
		{"компенсация", 3}, {"нарушение", 2}, {"claim", 3}, {"талап", 3},
	},
	model.CategoryAppFailure: {
		{"не работает", 3}, {"приложение", 2}, {"не открывается", 3},
		{"ошибка", 2}, {"баг", 3}, {"зависает", 3}, {"сбой", 3},
		{"app crash", 3}, {"error", 2}, {"қолданба", 2}, {"жұмыс істемейді", 3},
	},
	model.CategoryFraud: {
		{"мошенник", 3}, {"мошенничество", 3}, {"обман", 3}, {"украли", 3},
		{"fraud", 3}, {"scam", 3}, {"phishing", 3}, {"алаяқтық", 3},
		{"несанкционированный", 2}, {"без моего ведома", 3},
	},
	model.CategorySpam: {
		{"спам", 3}, {"реклама", 2}, {"рассылка", 2}, {"нежелательный", 2},
		{"spam", 3}, {"advertisement", 2}, {"unwanted", 2}, {"спам-хабар", 3},
	},
}

// longURLRe matches URLs long enough to be promotional links rather than
// pasted references.
var longURLRe = regexp.MustCompile(`https?://\S{15,}`)

// spamPatterns is the closed list of promotional patterns applied behind the
// length/URL gate.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)рекламн\S*\s+рассылк`),
	regexp.MustCompile(`(?i)только\s+сегодня`),
	regexp.MustCompile(`(?i)перейдите?\s+по\s+ссылке`),
	regexp.MustCompile(`(?i)бесплатн\S*\s+(подарок|бонус|доступ)`),
	regexp.MustCompile(`(?i)вы\s+выиграли`),
	regexp.MustCompile(`(?i)скидк[аи]\s+до\s+\d+`),
	regexp.MustCompile(`(?i)казино|ставки\s+на\s+спорт`),
	regexp.MustCompile(`(?i)кредит\s+без\s+(справок|отказа)`),
	regexp.MustCompile(`(?i)click\s+here|limited\s+offer`),
	regexp.MustCompile(`(?i)unsubscribe|отписаться\s+от\s+рассылки`),
}

// Classifier selects a ticket category from weighted keyword tables.
type Classifier struct{}

// NewClassifier returns a ready classifier. It holds no mutable state and is
// safe for concurrent use.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the best-matching category for text.
func (c *Classifier) Classify(text string) model.Category {
	category, _ := c.ClassifyWithScore(text)
	return category
}

// ClassifyWithScore returns the category plus its keyword score so callers
// can route low-confidence texts separately. The score is 0 for the spam
// short-circuit and for the default fallback.
func (c *Classifier) ClassifyWithScore(text string) (model.Category, int) {
	if isSpam(text) {
		return model.CategorySpam, 0
	}

	lowered := strings.ToLower(text)
	best := DefaultCategory
	bestScore := 0
	for _, category := range model.Categories {
		score := 0
		for _, wk := range categoryKeywords[category] {
			if strings.Contains(lowered, wk.keyword) {
				score += wk.weight
			}
		}
		// Strict > keeps the earlier category on ties.
		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	if bestScore < ConfidenceThreshold {
		return DefaultCategory, bestScore
	}
	return best, bestScore
}

// isSpam applies the spam short-circuit: bodies long enough (or carrying a
// long URL) are checked against the promotional patterns and the URL-count
// rule.
func isSpam(text string) bool {
	urls := longURLRe.FindAllString(text, -1)
	gated := utf8.RuneCountInString(text) >= spamLengthGate || len(urls) > 0
	if !gated {
		return false
	}
	if len(urls) >= spamURLCount {
		return true
	}
	for _, re := range spamPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
