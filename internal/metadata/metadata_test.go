package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pelotarr/internal/services"
)

func validEpisode() Episode {
	return Episode{
		Season:    2025,
		Episode:   330,
		Title:     "Ghent-Wevelgem 2025",
		ShowTitle: "Ghent-Wevelgem 2025",
		Plot:      "The peloton tackled the Kemmelberg twice.",
		Aired:     "2025-03-30",
		Genres:    []string{"Cycling", "Sports"},
		Tags:      []string{"UCI", "One-day"},
	}
}

func TestBuildXML(t *testing.T) {
	data, err := BuildXML(validEpisode())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"<episodedetails>",
		"<season>2025</season>",
		"<episode>330</episode>",
		"<title>Ghent-Wevelgem 2025</title>",
		"<aired>2025-03-30</aired>",
		"<status>Ended</status>",
		"<genre>Cycling</genre>",
		"<tag>UCI</tag>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in output:\n%s", want, out)
		}
	}
}

func TestBuildXMLRequiredFields(t *testing.T) {
	for name, mutate := range map[string]func(*Episode){
		"title":     func(e *Episode) { e.Title = "" },
		"showtitle": func(e *Episode) { e.ShowTitle = "" },
		"plot":      func(e *Episode) { e.Plot = "" },
		"aired":     func(e *Episode) { e.Aired = "30.03.2025" },
	} {
		e := validEpisode()
		mutate(&e)
		if _, err := BuildXML(e); !errors.Is(err, services.ErrInvalidInput) {
			t.Errorf("%s: got %v, want invalid input", name, err)
		}
	}
}

func TestBuildXMLSanitizesText(t *testing.T) {
	e := validEpisode()
	e.Plot = "line\x00one\n\n  spaced\tout  "
	data, err := BuildXML(e)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<plot>lineone spaced out</plot>") {
		t.Fatalf("plot not sanitized:\n%s", data)
	}
}

func TestWriteSidecar(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "Ghent-Wevelgem 2025.mp4")

	nfoPath, err := WriteSidecar(video, validEpisode())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if nfoPath != filepath.Join(dir, "Ghent-Wevelgem 2025.nfo") {
		t.Fatalf("sidecar at %q", nfoPath)
	}
	data, err := os.ReadFile(nfoPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Error("missing xml header")
	}
	if _, err := os.Stat(nfoPath + ".part"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestWriteSidecarInvalidEpisodeLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "race.mp4")
	e := validEpisode()
	e.Plot = ""

	if _, err := WriteSidecar(video, e); err == nil {
		t.Fatal("expected a validation error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("directory not empty after failed write: %v", entries)
	}
}
