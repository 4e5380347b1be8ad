package model

import "strings"

// chiefMarkers identify a "chief specialist" position after normalisation.
var chiefMarkers = []string{"глав", "chief", "гл. спец", "гл спец"}

// segmentAliases maps raw segment spellings to canonical segment labels.
var segmentAliases = map[string]string{
	"ВИП":       SegmentVIP,
	"VIP+":      SegmentVIP,
	"PRIOR":     SegmentPriority,
	"ПРИОРИТЕТ": SegmentPriority,
	"ПРИОР":     SegmentPriority,
	"МАСС":      SegmentMass,
}

// missingLiterals are string values treated as absent input.
var missingLiterals = map[string]struct{}{
	"":     {},
	"null": {},
	"nan":  {},
	"none": {},
	"-":    {},
}

// IsMissing reports whether a raw string value should be treated as absent.
func IsMissing(s string) bool {
	_, ok := missingLiterals[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// NormalizeSegment trims, uppercases and de-aliases a client segment.
func NormalizeSegment(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if canonical, ok := segmentAliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizePosition lowers a position string into the comparable form used
// for chief detection: lowercase, е for ё, "специалист" shortened to "спец".
func NormalizePosition(position string) string {
	s := strings.ToLower(strings.TrimSpace(position))
	s = strings.ReplaceAll(s, "ё", "е")
	s = strings.ReplaceAll(s, "специалист", "спец")
	return s
}

// IsChiefPosition reports whether the position denotes a chief specialist.
func IsChiefPosition(position string) bool {
	norm := NormalizePosition(position)
	for _, marker := range chiefMarkers {
		if strings.Contains(norm, marker) {
			return true
		}
	}
	return false
}

// ParseSkills splits a semicolon/comma separated skill string into an
// uppercased set. Blank entries are dropped.
func ParseSkills(raw string) SkillSet {
	set := make(SkillSet)
	raw = strings.ReplaceAll(raw, ";", ",")
	for _, part := range strings.Split(raw, ",") {
		skill := strings.ToUpper(strings.TrimSpace(part))
		if skill != "" {
			set[skill] = struct{}{}
		}
	}
	return set
}

// RequiresVIP reports whether the (normalised) segment requires a
// VIP-skilled agent.
func RequiresVIP(segment string) bool {
	return segment == SegmentVIP || segment == SegmentPriority
}

// RequiresLanguageSkill reports whether the detected language requires a
// matching language skill.
func RequiresLanguageSkill(lang Language) bool {
	return lang == LanguageKZ || lang == LanguageENG
}
