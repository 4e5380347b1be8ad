package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, New(Config{Model: "gpt-4o-mini"}))
	assert.NotNil(t, New(Config{APIKey: "sk-test", Model: "gpt-4o-mini"}))
}

func TestParseInsight(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		insight := ParseInsight(`{"summary": "Клиент не может войти", "recommendation": "Сбросить пароль"}`)
		require.NotNil(t, insight)
		assert.Equal(t, "Клиент не может войти", insight.Summary)
		assert.Equal(t, "Сбросить пароль", insight.Recommendation)
	})

	t.Run("fenced json", func(t *testing.T) {
		content := "```json\n{\"summary\": \"s1\", \"recommendation\": \"r1\"}\n```"
		insight := ParseInsight(content)
		require.NotNil(t, insight)
		assert.Equal(t, "s1", insight.Summary)
	})

	t.Run("prose around the block", func(t *testing.T) {
		content := `Вот ответ: {"summary": "s2", "recommendation": "r2"} — надеюсь, помог.`
		insight := ParseInsight(content)
		require.NotNil(t, insight)
		assert.Equal(t, "r2", insight.Recommendation)
	})

	t.Run("missing closing brace is repaired", func(t *testing.T) {
		insight := ParseInsight(`{"summary": "s3", "recommendation": "r3"`)
		require.NotNil(t, insight)
		assert.Equal(t, "s3", insight.Summary)
	})

	t.Run("unterminated string is repaired", func(t *testing.T) {
		insight := ParseInsight(`{"summary": "s4", "recommendation": "обрыв посередине`)
		require.NotNil(t, insight)
		assert.Equal(t, "обрыв посередине", insight.Recommendation)
	})

	t.Run("empty fields rejected", func(t *testing.T) {
		assert.Nil(t, ParseInsight(`{"summary": "", "recommendation": "r"}`))
		assert.Nil(t, ParseInsight(`{"summary": "s", "recommendation": "  "}`))
	})

	t.Run("garbage rejected", func(t *testing.T) {
		assert.Nil(t, ParseInsight("no json here"))
		assert.Nil(t, ParseInsight(""))
		assert.Nil(t, ParseInsight(`{"summary": 5, "recommendation": []}`))
	})

	t.Run("overlong fields truncated", func(t *testing.T) {
		long := strings.Repeat("д", 400)
		insight := ParseInsight(`{"summary": "` + long + `", "recommendation": "` + long + `"}`)
		require.NotNil(t, insight)
		assert.Len(t, []rune(insight.Summary), 250)
		assert.Len(t, []rune(insight.Recommendation), 300)
	})
}

func TestExtractJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSONBlock("text {\"a\": 1} trailing"))
	assert.Equal(t, `{"a": "{не скобка}"}`, ExtractJSONBlock(`{"a": "{не скобка}"}`))
	assert.Equal(t, "", ExtractJSONBlock("no braces"))
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"a": "b"}`, RepairJSON(`{"a": "b"}`))
	assert.Equal(t, `{"a": "b"}`, RepairJSON(`{"a": "b"`))
	assert.Equal(t, `{"a": "b"}`, RepairJSON(`{"a": "b`))
	assert.Equal(t, "", RepairJSON(""))
}
