package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// looseString accepts JSON strings, numbers, booleans and null, all
// flattened to a trimmed string. Operational exports are rarely typed
// consistently.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if len(raw) >= 2 && raw[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	*s = looseString(raw)
	return nil
}

func (s looseString) String() string { return string(s) }

// looseInt accepts integers, floats (truncated) and numeric strings.
// Anything unparseable becomes zero.
type looseInt int

func (i *looseInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*i = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*i = 0
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		*i = looseInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*i = looseInt(int(f))
		return nil
	}
	*i = 0
	return nil
}

// looseFloat accepts numbers and numeric strings; null, empty and
// unparseable values stay nil.
type looseFloat struct {
	value *float64
}

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		f.value = nil
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		f.value = nil
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.value = nil
		return nil
	}
	f.value = &v
	return nil
}
