package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pelotarr/internal/races"
	"pelotarr/internal/services"
)

// Entry is one race in the season catalog document.
type Entry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   int    `json:"type"`
	Level  string `json:"level"`
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
	Stages int    `json:"stages,omitempty"`
}

// document mirrors the on-disk shape: men's and women's races in
// separate arrays.
type document struct {
	Men   []Entry `json:"races_men"`
	Women []Entry `json:"races_women"`
}

// Catalog is the loaded season catalog, indexed by race id.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// Load reads and parses the catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "load", "reading catalog file", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrIntegrity, "catalog", "load", "parsing catalog file", err)
	}

	entries := append(doc.Men, doc.Women...)
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
	return &Catalog{entries: entries, byID: byID}, nil
}

// All returns every catalog entry, men's races first.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// FindByID looks up an entry by its base id (any ::stage suffix must be
// removed by the caller).
func (c *Catalog) FindByID(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Monitored is one store row derived from a catalog entry.
type Monitored struct {
	ID     string
	Fields races.Fields
}

var datePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?$`)

// ParseDate parses the catalog's "DD.MM" date form, optionally carrying a
// two or four digit year. A missing year resolves to the year of ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := ref.UTC().Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Expand turns a monitor request into the store rows it creates. A
// single-day race yields one row. For a multi-stage race, a composite id
// selects that one stage, while the bare id expands to every stage.
func (e Entry) Expand(requestedID string, ref time.Time) ([]Monitored, error) {
	start, err := ParseDate(e.Start, ref)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "catalog", "expand", "invalid start date", err)
	}
	var end *time.Time
	if e.End != "" {
		parsed, err := ParseDate(e.End, ref)
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidInput, "catalog", "expand", "invalid end date", err)
		}
		end = &parsed
	}

	fields := func(name string) races.Fields {
		kind := races.Kind(e.Type)
		return races.Fields{
			Name:      races.String(name),
			Kind:      races.KindOf(kind),
			Level:     races.String(e.Level),
			StartDate: races.Time(start),
			EndDate:   end,
			Acquired:  races.Bool(false),
		}
	}

	if races.Kind(e.Type) == races.KindSingleDay {
		return []Monitored{{ID: e.ID, Fields: fields(e.Name)}}, nil
	}

	if _, stage, ok := strings.Cut(requestedID, "::"); ok {
		return []Monitored{{
			ID:     requestedID,
			Fields: fields(e.Name + " Stage " + stage),
		}}, nil
	}

	if e.Stages < 1 {
		return nil, services.Wrap(services.ErrInvalidInput, "catalog", "expand",
			fmt.Sprintf("stage race %s has no stage count", e.ID), nil)
	}
	out := make([]Monitored, 0, e.Stages)
	for i := 1; i <= e.Stages; i++ {
		out = append(out, Monitored{
			ID:     e.ID + "::" + strconv.Itoa(i),
			Fields: fields(e.Name + " Stage " + strconv.Itoa(i)),
		})
	}
	return out, nil
}

// StageIDs lists the store ids a delete of the given id must cover.
func (e Entry) StageIDs(requestedID string) []string {
	if races.Kind(e.Type) == races.KindSingleDay || strings.Contains(requestedID, "::") {
		return []string{requestedID}
	}
	out := make([]string, 0, e.Stages)
	for i := 1; i <= e.Stages; i++ {
		out = append(out, e.ID+"::"+strconv.Itoa(i))
	}
	return out
}
