package nlp

import (
	"strings"

	"github.com/qazfin/fireroute/engine/model"
)

// kazakhLetters are the Cyrillic letters specific to Kazakh.
const kazakhLetters = "әіңғүұқөһ"

// kazakhWords are unambiguously Kazakh words spelled without the specific
// letters, so the character rule alone would miss them.
var kazakhWords = []string{
	"рахмет",
	"салеметсиз",
	"жардем",
	"калайсыз",
	"отиниш",
	"болады ма",
}

// DetectLanguage classifies text as KZ, ENG or RU. Rules in order: any
// Kazakh-specific letter wins, then the Kazakh dictionary, then a simple
// Latin/Cyrillic majority. Empty input defaults to RU.
func DetectLanguage(text string) model.Language {
	lowered := strings.ToLower(text)

	var kazakh, latin, cyrillic int
	for _, r := range lowered {
		switch {
		case strings.ContainsRune(kazakhLetters, r):
			kazakh++
		case r >= 'a' && r <= 'z':
			latin++
		case (r >= 'а' && r <= 'я') || r == 'ё':
			cyrillic++
		}
	}

	if kazakh >= 1 {
		return model.LanguageKZ
	}
	for _, word := range kazakhWords {
		if strings.Contains(lowered, word) {
			return model.LanguageKZ
		}
	}
	if latin > cyrillic {
		return model.LanguageENG
	}
	return model.LanguageRU
}
