package model

import (
	"encoding/json"
	"sort"
)

// MarshalJSON encodes the set as a sorted array of skill names.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts either an array of skill names or a single
// delimiter-separated string, matching the loose corpus format.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		set := make(SkillSet, len(list))
		for _, skill := range list {
			for k := range ParseSkills(skill) {
				set[k] = struct{}{}
			}
		}
		*s = set
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSkills(raw)
	return nil
}

// Sorted returns the skills in lexical order.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
