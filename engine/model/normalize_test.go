package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VIP", SegmentVIP},
		{"вип", SegmentVIP},
		{"VIP+", SegmentVIP},
		{"приоритет", SegmentPriority},
		{"PRIOR", SegmentPriority},
		{"масс", SegmentMass},
		{"MASS", SegmentMass},
		{"  vip ", SegmentVIP},
		{"", ""},
		{"другое", "ДРУГОЕ"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeSegment(tc.in), "segment %q", tc.in)
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "null", "NaN", "None", "-"} {
		assert.True(t, IsMissing(v), "value %q", v)
	}
	assert.False(t, IsMissing("Астана"))
	assert.False(t, IsMissing("0"))
}

func TestParseSkills(t *testing.T) {
	s := ParseSkills("vip; kz, eng")
	assert.True(t, s.Has("VIP"))
	assert.True(t, s.Has("KZ"))
	assert.True(t, s.Has("ENG"))
	assert.Len(t, s, 3)

	assert.Empty(t, ParseSkills(""))
}

func TestSkillSetJSON(t *testing.T) {
	var s SkillSet
	require.NoError(t, json.Unmarshal([]byte(`["vip","kz"]`), &s))
	assert.True(t, s.Has("VIP"))

	var fromString SkillSet
	require.NoError(t, json.Unmarshal([]byte(`"ENG; VIP"`), &fromString))
	assert.True(t, fromString.Has("ENG"))
	assert.True(t, fromString.Has("VIP"))

	out, err := json.Marshal(fromString)
	require.NoError(t, err)
	assert.JSONEq(t, `["ENG","VIP"]`, string(out))
}

func TestRequires(t *testing.T) {
	assert.True(t, RequiresVIP(SegmentVIP))
	assert.True(t, RequiresVIP(SegmentPriority))
	assert.False(t, RequiresVIP(SegmentMass))

	assert.True(t, RequiresLanguageSkill(LanguageKZ))
	assert.True(t, RequiresLanguageSkill(LanguageENG))
	assert.False(t, RequiresLanguageSkill(LanguageRU))
}

func TestTicketHasCoords(t *testing.T) {
	lat, lon := 51.1, 71.4
	assert.True(t, Ticket{Lat: &lat, Lon: &lon}.HasCoords())
	assert.False(t, Ticket{Lat: &lat}.HasCoords())
	assert.False(t, Ticket{}.HasCoords())
}
