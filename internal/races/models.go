package races

import "time"

// Kind distinguishes single-day classics from multi-stage tours.
type Kind int

const (
	// KindSingleDay is a one-day race mapped to a single library episode.
	KindSingleDay Kind = 1
	// KindMultiStage is a tour whose stages are monitored as separate rows
	// with composite ids ("<uuid>::<stage>").
	KindMultiStage Kind = 2
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSingleDay || k == KindMultiStage
}

// Race is a monitored event (or a single stage of one) tracked for
// acquisition.
type Race struct {
	ID           string
	Name         string
	Kind         Kind
	Level        string
	StartDate    time.Time
	EndDate      *time.Time
	Acquired     bool
	DateAcquired *time.Time
	FileName     string
	FilePath     string
	FileSizeGB   float64
}

// EventDate returns the date used for feed matching: the end date when
// present, otherwise the start date.
func (r Race) EventDate() time.Time {
	if r.EndDate != nil {
		return *r.EndDate
	}
	return r.StartDate
}

// Fields carries a partial update: nil members are left untouched.
type Fields struct {
	Name         *string
	Kind         *Kind
	Level        *string
	StartDate    *time.Time
	EndDate      *time.Time
	Acquired     *bool
	DateAcquired *time.Time
	FileName     *string
	FilePath     *string
	FileSizeGB   *float64
}

// String returns a pointer to s, for building Fields literals.
func String(s string) *string { return &s }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Float64 returns a pointer to f.
func Float64(f float64) *float64 { return &f }

// KindOf returns a pointer to k.
func KindOf(k Kind) *Kind { return &k }
