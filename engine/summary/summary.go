// Package summary provides deterministic fallback summarisation and
// rule-based action recommendations, used whenever the LLM adapter yields
// nothing.
package summary

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qazfin/fireroute/engine/model"
)

// MaxSummaryLen caps summaries, in runes.
const MaxSummaryLen = 300

// minSentenceLen filters out fragments too short to be meaningful.
const minSentenceLen = 10

var (
	spacesRe   = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)
)

// Summarize extracts a short summary: whitespace normalised, the first one
// or two sentences of at least ten characters, truncated to 300 runes.
func Summarize(text string) string {
	cleaned := strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
	if cleaned == "" {
		return ""
	}

	var meaningful []string
	for _, part := range sentenceRe.FindAllString(cleaned, -1) {
		s := strings.TrimSpace(part)
		if utf8.RuneCountInString(s) >= minSentenceLen {
			meaningful = append(meaningful, s)
			if len(meaningful) == 2 {
				break
			}
		}
	}
	if len(meaningful) == 0 {
		return truncate(cleaned, MaxSummaryLen)
	}
	return truncate(strings.Join(meaningful, " "), MaxSummaryLen)
}

// truncate cuts a string to maxLen runes. Rune-level so Cyrillic text is
// never split mid-character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// rule is one recommendation rule: category fragment, minimum priority and
// sentiment constraint. Rules are evaluated top to bottom, first match wins.
type rule struct {
	categoryFragment string
	minPriority      int
	sentiment        model.Sentiment // empty means any
	recommendation   string
}

var rules = []rule{
	{"Мошеннические", 1, "",
		"Немедленно заблокируйте счёт клиента и передайте заявку в службу безопасности."},
	{"Претензия", 7, model.SentimentNegative,
		"Приоритетная претензия: свяжитесь с клиентом в течение 1 часа, предложите компенсацию."},
	{"Претензия", 1, "",
		"Рассмотрите претензию в течение 24 часов и предоставьте письменный ответ."},
	{"Жалоба", 7, model.SentimentNegative,
		"Высокоприоритетная жалоба: эскалируйте руководителю и свяжитесь с клиентом сегодня."},
	{"Жалоба", 1, "",
		"Обработайте жалобу в течение рабочего дня, предложите решение проблемы."},
	{"Неработоспособность", 7, "",
		"Критический сбой приложения: передайте в L2-поддержку немедленно."},
	{"Неработоспособность", 1, "",
		"Проверьте техническую проблему и при необходимости передайте в L2-поддержку."},
	{"Смена данных", 1, "",
		"Верифицируйте личность клиента перед внесением изменений."},
	{"Спам", 1, "",
		"Отметьте контакт как спам и при необходимости заблокируйте отправителя."},
	{"Консультация", 1, model.SentimentPositive,
		"Предоставьте консультацию и предложите дополнительные продукты."},
	{"Консультация", 1, "",
		"Предоставьте полную консультацию и зафиксируйте результат."},
}

// DefaultRecommendation is the catch-all action.
const DefaultRecommendation = "Обработайте обращение в стандартные сроки согласно регламенту."

// Recommend returns the action for the given category, priority and
// sentiment.
func Recommend(category model.Category, priority int, sentiment model.Sentiment) string {
	for _, r := range rules {
		if !strings.Contains(string(category), r.categoryFragment) {
			continue
		}
		if priority < r.minPriority {
			continue
		}
		if r.sentiment != "" && r.sentiment != sentiment {
			continue
		}
		return r.recommendation
	}
	return DefaultRecommendation
}
