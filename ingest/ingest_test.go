package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTickets(t *testing.T) {
	path := writeFile(t, "tickets.json", `[
		{"guid": "t1", "description": "не работает приложение", "city": "г. Алматы",
		 "country": "Казахстан", "segment": "VIP", "lat": "43,2389", "lon": 76.8897},
		{"guid": null, "text": "вопрос по карте", "city": "Астана", "segment": 42}
	]`)

	tickets, err := Tickets(path)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.Equal(t, "t1", tickets[0].GUID)
	assert.Equal(t, "не работает приложение", tickets[0].Text)
	require.NotNil(t, tickets[0].Lat)
	assert.InDelta(t, 43.2389, *tickets[0].Lat, 1e-9, "comma decimal coerced")
	require.NotNil(t, tickets[0].Lon)

	assert.NotEmpty(t, tickets[1].GUID, "missing guid backfilled")
	assert.Equal(t, "вопрос по карте", tickets[1].Text)
	assert.Equal(t, "42", tickets[1].Segment, "numeric segment flattened to string")
	assert.Nil(t, tickets[1].Lat)
}

func TestManagers(t *testing.T) {
	path := writeFile(t, "managers.json", `[
		{"name": "M1", "position": "главный специалист", "office": "Астана",
		 "skills": ["vip", "kz"], "load": "3"},
		{"name": "M2", "office": "Алматы", "skills": "ENG; VIP", "load": 2.9},
		{"name": "", "office": "Алматы"},
		{"name": "M3", "office": "Алматы", "skills": null}
	]`)

	managers, err := Managers(path)
	require.NoError(t, err)
	require.Len(t, managers, 3, "nameless record dropped")

	assert.Equal(t, 3, managers[0].Load, "string load coerced")
	assert.True(t, managers[0].Skills.Has("VIP"))
	assert.True(t, managers[0].Skills.Has("KZ"))

	assert.Equal(t, 2, managers[1].Load, "float load truncated")
	assert.True(t, managers[1].Skills.Has("ENG"))
	assert.True(t, managers[1].Skills.Has("VIP"))

	assert.Empty(t, managers[2].Skills)
}

func TestOffices(t *testing.T) {
	path := writeFile(t, "offices.json", `[
		{"name": "г. Тараз"},
		{"name": "Астана", "address": "свой адрес", "lat": 51.1694, "lon": 71.4491},
		{"name": ""}
	]`)

	offices, err := Offices(path)
	require.NoError(t, err)
	require.Len(t, offices, 2)

	assert.Equal(t, "ул. Желтоксан 86", offices[0].Address, "address book backfill")
	assert.Nil(t, offices[0].Lat)

	assert.Equal(t, "свой адрес", offices[1].Address, "explicit address kept")
	require.NotNil(t, offices[1].Lat)
}

func TestTicketsMissingFile(t *testing.T) {
	_, err := Tickets(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestResolveAddress(t *testing.T) {
	assert.Equal(t, "ул. Букетова 31А", resolveAddress("Петропавловск", ""))
	assert.Equal(t, "ул. Букетова 31А", resolveAddress("г. Петропавловск", "nan"))
	assert.Equal(t, "ул. Ескалиева, д. 177, оф. 505", resolveAddress("Уральск", ""))
	assert.Equal(t, "custom", resolveAddress("Астана", "custom"))
	assert.Equal(t, "", resolveAddress("Неизвестный", ""))
}
