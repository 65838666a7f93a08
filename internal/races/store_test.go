package races

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"pelotarr/internal/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "races.db"))
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestParseID(t *testing.T) {
	base := uuid.NewString()
	tests := []struct {
		name      string
		id        string
		wantStage int
		wantErr   bool
	}{
		{"plain uuid", base, 0, false},
		{"stage suffix", base + "::4", 4, false},
		{"zero stage", base + "::0", 0, true},
		{"padded stage", base + "::04", 0, true},
		{"garbage uuid", "not-a-uuid", 0, true},
		{"empty", "", 0, true},
		{"trailing separator", base + "::", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBase, gotStage, err := ParseID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) should fail", tt.id)
				}
				if !errors.Is(err, services.ErrInvalidInput) {
					t.Errorf("ParseID(%q) error should be ErrInvalidInput, got %v", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) error = %v", tt.id, err)
			}
			if gotBase != base || gotStage != tt.wantStage {
				t.Errorf("ParseID(%q) = (%q, %d)", tt.id, gotBase, gotStage)
			}
		})
	}
}

func TestUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	start := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)

	err := store.Upsert(ctx, id, Fields{
		Name:      String("Ghent-Wevelgem"),
		Kind:      KindOf(KindSingleDay),
		Level:     String("UWT"),
		StartDate: Time(start),
		Acquired:  Bool(false),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	race, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if race == nil {
		t.Fatal("GetByID() returned nil for inserted race")
	}
	if race.Name != "Ghent-Wevelgem" || race.Kind != KindSingleDay || !race.StartDate.Equal(start) {
		t.Errorf("round-tripped race = %+v", race)
	}
	if race.Acquired || race.EndDate != nil {
		t.Errorf("unexpected defaults: %+v", race)
	}
}

func TestUpsertUpdatesOnlyProvidedFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	start := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, id, Fields{
		Name: String("Tour de France Stage 1"), Kind: KindOf(KindMultiStage),
		Level: String("UWT"), StartDate: Time(start),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, id, Fields{Level: String("Pro")}); err != nil {
		t.Fatal(err)
	}

	race, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if race.Level != "Pro" {
		t.Errorf("level = %q, want Pro", race.Level)
	}
	if race.Name != "Tour de France Stage 1" {
		t.Errorf("name clobbered: %q", race.Name)
	}
}

func TestUpdateAcquisition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString() + "::3"
	start := time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, id, Fields{
		Name: String("Vuelta a España Stage 3"), Kind: KindOf(KindMultiStage),
		StartDate: Time(start),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := store.Update(ctx, id, Fields{
		Acquired:   Bool(true),
		FileName:   String("Vuelta a España Stage 3 2025.mp4"),
		FilePath:   String("/shows/x.mp4"),
		FileSizeGB: Float64(2.348),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Update() rows = %d, want 1", n)
	}

	race, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !race.Acquired || race.FileSizeGB != 2.348 {
		t.Errorf("acquisition fields not persisted: %+v", race)
	}
}

func TestUpdateNoFields(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Update(context.Background(), uuid.NewString(), Fields{}); err == nil {
		t.Error("Update() with no fields should fail")
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	if err := store.Upsert(ctx, id, Fields{
		Name: String("E3"), Kind: KindOf(KindSingleDay), StartDate: Time(time.Now().UTC()),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := store.Remove(ctx, id)
	if err != nil || n != 1 {
		t.Fatalf("Remove() = (%d, %v), want (1, nil)", n, err)
	}
	race, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if race != nil {
		t.Error("race should be gone after Remove")
	}
}

func TestListOrdersByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, name := range []string{"Zuri Metzgete", "Amstel Gold Race", "Milano-Sanremo"} {
		if err := store.Upsert(ctx, uuid.NewString(), Fields{
			Name: String(name), Kind: KindOf(KindSingleDay), StartDate: Time(now),
		}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() len = %d, want 3", len(list))
	}
	if list[0].Name != "Amstel Gold Race" || list[2].Name != "Zuri Metzgete" {
		t.Errorf("List() not ordered by name: %q, %q, %q", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestStageID(t *testing.T) {
	base := uuid.NewString()
	id := StageID(base, 7)
	gotBase, gotStage, err := ParseID(id)
	if err != nil {
		t.Fatalf("ParseID(StageID()) error = %v", err)
	}
	if gotBase != base || gotStage != 7 {
		t.Errorf("round trip = (%q, %d)", gotBase, gotStage)
	}
}
