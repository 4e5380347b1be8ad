// Package ingest loads the ticket, manager and office corpora from JSON
// files. Field values are coerced loosely because the upstream exports
// mix types freely: loads arrive as strings, coordinates as either
// numbers or comma-decimal strings, skills as arrays or delimited text.
package ingest

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/qazfin/fireroute/engine/model"
)

type rawTicket struct {
	GUID        looseString `json:"guid"`
	Text        looseString `json:"text"`
	Description looseString `json:"description"`
	City        looseString `json:"city"`
	Region      looseString `json:"region"`
	Country     looseString `json:"country"`
	Segment     looseString `json:"segment"`
	Lat         looseFloat  `json:"lat"`
	Lon         looseFloat  `json:"lon"`
}

type rawManager struct {
	Name     looseString     `json:"name"`
	Position looseString     `json:"position"`
	Office   looseString     `json:"office"`
	Skills   json.RawMessage `json:"skills"`
	Load     looseInt        `json:"load"`
}

type rawOffice struct {
	Name    looseString `json:"name"`
	Address looseString `json:"address"`
	Lat     looseFloat  `json:"lat"`
	Lon     looseFloat  `json:"lon"`
}

// Tickets loads the ticket corpus. Missing GUIDs are backfilled with
// fresh UUIDs so downstream joins stay possible.
func Tickets(path string) ([]model.Ticket, error) {
	var raws []rawTicket
	if err := readJSON(path, &raws); err != nil {
		return nil, errors.Wrap(err, "load tickets")
	}

	tickets := make([]model.Ticket, 0, len(raws))
	var backfilled int
	for _, r := range raws {
		guid := r.GUID.String()
		if model.IsMissing(guid) {
			guid = uuid.NewString()
			backfilled++
		}
		text := r.Text.String()
		if text == "" {
			text = r.Description.String()
		}
		tickets = append(tickets, model.Ticket{
			GUID:    guid,
			Text:    text,
			City:    r.City.String(),
			Region:  r.Region.String(),
			Country: r.Country.String(),
			Segment: r.Segment.String(),
			Lat:     r.Lat.value,
			Lon:     r.Lon.value,
		})
	}
	if backfilled > 0 {
		slog.Warn("ingest: tickets without guid, backfilled", "count", backfilled)
	}
	return tickets, nil
}

// Managers loads the manager corpus. Records without a name are dropped.
func Managers(path string) ([]model.Manager, error) {
	var raws []rawManager
	if err := readJSON(path, &raws); err != nil {
		return nil, errors.Wrap(err, "load managers")
	}

	managers := make([]model.Manager, 0, len(raws))
	for _, r := range raws {
		if model.IsMissing(r.Name.String()) {
			continue
		}
		managers = append(managers, model.Manager{
			Name:     r.Name.String(),
			Position: r.Position.String(),
			Office:   r.Office.String(),
			Skills:   parseRawSkills(r.Skills),
			Load:     int(r.Load),
		})
	}
	return managers, nil
}

// Offices loads the office corpus, backfilling missing addresses from
// the built-in address book.
func Offices(path string) ([]model.Office, error) {
	var raws []rawOffice
	if err := readJSON(path, &raws); err != nil {
		return nil, errors.Wrap(err, "load offices")
	}

	offices := make([]model.Office, 0, len(raws))
	for _, r := range raws {
		if model.IsMissing(r.Name.String()) {
			continue
		}
		offices = append(offices, model.Office{
			Name:    r.Name.String(),
			Address: resolveAddress(r.Name.String(), r.Address.String()),
			Lat:     r.Lat.value,
			Lon:     r.Lon.value,
		})
	}
	return offices, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

// parseRawSkills accepts either a JSON array of strings or a single
// delimited string.
func parseRawSkills(raw json.RawMessage) model.SkillSet {
	if len(raw) == 0 {
		return model.SkillSet{}
	}
	var s model.SkillSet
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return model.SkillSet{}
	}
	return s
}
