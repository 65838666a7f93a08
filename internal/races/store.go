package races

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pelotarr/internal/config"
)

// Store manages monitored race persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the race database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "pelotarr.db")
	return OpenPath(dbPath)
}

// OpenPath opens the race database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// mutableColumns are the columns a Fields update may touch, in SQL order.
func (f Fields) columns() ([]string, []any) {
	cols := make([]string, 0, 10)
	vals := make([]any, 0, 10)
	add := func(col string, v any) {
		cols = append(cols, col)
		vals = append(vals, v)
	}
	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.Kind != nil {
		add("kind", int(*f.Kind))
	}
	if f.Level != nil {
		add("level", *f.Level)
	}
	if f.StartDate != nil {
		add("start_date", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		add("end_date", f.EndDate.UTC().Format(time.RFC3339))
	}
	if f.Acquired != nil {
		add("acquired", boolToInt(*f.Acquired))
	}
	if f.DateAcquired != nil {
		add("date_acquired", f.DateAcquired.UTC().Format(time.RFC3339))
	}
	if f.FileName != nil {
		add("file_name", *f.FileName)
	}
	if f.FilePath != nil {
		add("file_path", *f.FilePath)
	}
	if f.FileSizeGB != nil {
		add("file_size_gb", *f.FileSizeGB)
	}
	return cols, vals
}

// Upsert inserts a race row, updating the provided fields when the id
// already exists. Only non-nil fields are written.
func (s *Store) Upsert(ctx context.Context, id string, fields Fields) error {
	if _, _, err := ParseID(id); err != nil {
		return err
	}

	cols, vals := fields.columns()
	insertCols := append([]string{"id"}, cols...)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(insertCols)), ",")
	args := append([]any{id}, vals...)

	conflict := `ON CONFLICT(id) DO NOTHING`
	if len(cols) > 0 {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
		}
		conflict = "ON CONFLICT(id) DO UPDATE SET " + strings.Join(sets, ", ")
	}

	query := fmt.Sprintf(
		"INSERT INTO races (%s) VALUES (%s) %s",
		strings.Join(insertCols, ", "), placeholders, conflict,
	)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race %s: %w", id, err)
	}
	return nil
}

// Update modifies the provided fields of an existing row. Returns the number
// of rows changed (0 when the id is unknown).
func (s *Store) Update(ctx context.Context, id string, fields Fields) (int64, error) {
	if _, _, err := ParseID(id); err != nil {
		return 0, err
	}
	cols, vals := fields.columns()
	if len(cols) == 0 {
		return 0, errors.New("no fields provided to update")
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE races SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, append(vals, id)...)
	if err != nil {
		return 0, fmt.Errorf("update race %s: %w", id, err)
	}
	return res.RowsAffected()
}

// Remove deletes a race row. Returns the number of rows deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, id string) (int64, error) {
	if _, _, err := ParseID(id); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM races WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("remove race %s: %w", id, err)
	}
	return res.RowsAffected()
}

// GetByID returns a race by id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Race, error) {
	if _, _, err := ParseID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	race, err := scanRace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get race %s: %w", id, err)
	}
	return race, nil
}

// List returns all monitored races ordered by name.
func (s *Store) List(ctx context.Context) ([]Race, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	defer rows.Close()

	var out []Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan race: %w", err)
		}
		out = append(out, *race)
	}
	return out, rows.Err()
}

const selectColumns = `SELECT id, name, kind, level, start_date, end_date,
    acquired, date_acquired, file_name, file_path, file_size_gb FROM races`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRace(row rowScanner) (*Race, error) {
	var (
		r            Race
		kind         int
		startDate    string
		endDate      sql.NullString
		acquired     int
		dateAcquired sql.NullString
		fileName     sql.NullString
		filePath     sql.NullString
		fileSizeGB   sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &r.Name, &kind, &r.Level, &startDate, &endDate,
		&acquired, &dateAcquired, &fileName, &filePath, &fileSizeGB); err != nil {
		return nil, err
	}

	r.Kind = Kind(kind)
	r.Acquired = acquired != 0
	r.FileName = fileName.String
	r.FilePath = filePath.String
	r.FileSizeGB = fileSizeGB.Float64

	start, err := time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date %q: %w", startDate, err)
	}
	r.StartDate = start

	if endDate.Valid && endDate.String != "" {
		end, err := time.Parse(time.RFC3339, endDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_date %q: %w", endDate.String, err)
		}
		r.EndDate = &end
	}
	if dateAcquired.Valid && dateAcquired.String != "" {
		when, err := time.Parse(time.RFC3339, dateAcquired.String)
		if err != nil {
			return nil, fmt.Errorf("parse date_acquired %q: %w", dateAcquired.String, err)
		}
		r.DateAcquired = &when
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
