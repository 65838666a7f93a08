package metadata

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pelotarr/internal/fileutil"
	"pelotarr/internal/services"
)

const maxTextLen = 4000

var airedPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Episode describes one broadcast for the sidecar document. Season,
// Episode, Title, ShowTitle, Plot and Aired are required; the rest is
// optional descriptive detail.
type Episode struct {
	Season    int
	Episode   int
	Title     string
	ShowTitle string
	Plot      string
	Aired     string

	Status   string
	Studio   string
	Country  string
	Language string
	Genres   []string
	Tags     []string
	Thumbs   []string
	// UniqueIDs maps an external provider name to its identifier.
	UniqueIDs map[string]string
}

type uniqueID struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type episodeDetails struct {
	XMLName   xml.Name   `xml:"episodedetails"`
	Title     string     `xml:"title"`
	ShowTitle string     `xml:"showtitle"`
	Season    int        `xml:"season"`
	Episode   int        `xml:"episode"`
	Plot      string     `xml:"plot"`
	Aired     string     `xml:"aired"`
	Status    string     `xml:"status,omitempty"`
	Studio    string     `xml:"studio,omitempty"`
	Country   string     `xml:"country,omitempty"`
	Language  string     `xml:"language,omitempty"`
	Genres    []string   `xml:"genre,omitempty"`
	Tags      []string   `xml:"tag,omitempty"`
	Thumbs    []string   `xml:"thumb,omitempty"`
	UniqueIDs []uniqueID `xml:"uniqueid,omitempty"`
}

// sanitize strips control characters, collapses whitespace and caps the
// length so a hostile feed body cannot blow up the sidecar.
func sanitize(s string, limit int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e Episode) validate() error {
	switch {
	case e.Title == "":
		return services.Wrap(services.ErrInvalidInput, "metadata", "write", "title is required", nil)
	case e.ShowTitle == "":
		return services.Wrap(services.ErrInvalidInput, "metadata", "write", "showtitle is required", nil)
	case e.Plot == "":
		return services.Wrap(services.ErrInvalidInput, "metadata", "write", "plot is required", nil)
	case !airedPattern.MatchString(e.Aired):
		return services.Wrap(services.ErrInvalidInput, "metadata", "write",
			fmt.Sprintf("aired %q is not a calendar date", e.Aired), nil)
	}
	return nil
}

// BuildXML renders the episodedetails document.
func BuildXML(e Episode) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	doc := episodeDetails{
		Title:     sanitize(e.Title, 512),
		ShowTitle: sanitize(e.ShowTitle, 512),
		Season:    e.Season,
		Episode:   e.Episode,
		Plot:      sanitize(e.Plot, maxTextLen),
		Aired:     e.Aired,
		Status:    sanitize(e.Status, 64),
		Studio:    sanitize(e.Studio, 128),
		Country:   sanitize(e.Country, 128),
		Language:  sanitize(e.Language, 64),
	}
	if doc.Status == "" {
		doc.Status = "Ended"
	}
	for _, g := range e.Genres {
		doc.Genres = append(doc.Genres, sanitize(g, 64))
	}
	for _, t := range e.Tags {
		doc.Tags = append(doc.Tags, sanitize(t, 64))
	}
	for _, t := range e.Thumbs {
		doc.Thumbs = append(doc.Thumbs, sanitize(t, 1024))
	}
	for _, typ := range sortedKeys(e.UniqueIDs) {
		doc.UniqueIDs = append(doc.UniqueIDs, uniqueID{Type: typ, Value: sanitize(e.UniqueIDs[typ], 256)})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrIntegrity, "metadata", "write", "encoding episode details", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// WriteSidecar writes <basename>.nfo beside the video, atomically through
// a .part temp file, and returns the sidecar path. It refuses to write
// outside the video's own directory.
func WriteSidecar(videoPath string, e Episode) (string, error) {
	if videoPath == "" {
		return "", services.Wrap(services.ErrInvalidInput, "metadata", "write", "video path is required", nil)
	}

	dir, err := filepath.Abs(filepath.Dir(videoPath))
	if err != nil {
		return "", services.Wrap(services.ErrInvalidInput, "metadata", "write", "resolving video directory", err)
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	nfoPath := filepath.Join(dir, base+".nfo")
	if err := fileutil.EnsureSubpath(nfoPath, dir); err != nil {
		return "", services.Wrap(services.ErrPolicyViolation, "metadata", "write", "sidecar confinement", err)
	}

	xmlData, err := BuildXML(e)
	if err != nil {
		return "", err
	}

	if err := fileutil.EnsureDir(dir); err != nil {
		return "", services.Wrap(services.ErrIntegrity, "metadata", "write", "creating sidecar directory", err)
	}
	tmp := nfoPath + ".part"
	if err := os.WriteFile(tmp, xmlData, 0o644); err != nil {
		return "", services.Wrap(services.ErrIntegrity, "metadata", "write", "writing sidecar temp file", err)
	}
	if err := os.Rename(tmp, nfoPath); err != nil {
		os.Remove(tmp)
		return "", services.Wrap(services.ErrIntegrity, "metadata", "write", "finalizing sidecar", err)
	}
	return nfoPath, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
