package scenarios

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/assetsim/internal/database"
	"github.com/aristath/assetsim/internal/modules/simulation"
)

// Repository handles scenario database operations.
// Scenarios live in scenarios.db (scenarios table); the request is stored
// as a JSON document in the data column.
type Repository struct {
	db  *sql.DB        // scenarios.db - scenarios table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new scenario repository.
//
// Parameters:
//   - db: Database connection to scenarios.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "scenarios").Logger(),
	}
}

// Save inserts or replaces a scenario.
// CreatedAt is kept from the existing row on update; both timestamps on
// s are set from the stored values.
//
// Parameters:
//   - s: Scenario to store (name must be valid)
//
// Returns:
//   - error: Validation or database error
func (r *Repository) Save(s *Scenario) error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}

	data, err := json.Marshal(s.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario %s: %w", s.Name, err)
	}

	now := time.Now().Unix()
	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO scenarios (name, description, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				description = excluded.description,
				data = excluded.data,
				updated_at = excluded.updated_at
		`, s.Name, s.Description, string(data), now, now); err != nil {
			return err
		}

		var createdAt, updatedAt int64
		if err := tx.QueryRow(
			"SELECT created_at, updated_at FROM scenarios WHERE name = ?", s.Name,
		).Scan(&createdAt, &updatedAt); err != nil {
			return err
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save scenario %s: %w", s.Name, err)
	}

	r.log.Debug().Str("name", s.Name).Msg("Scenario saved")
	return nil
}

// Get retrieves a scenario by name.
//
// Returns:
//   - *Scenario: The stored scenario
//   - error: ErrNotFound if it does not exist
func (r *Repository) Get(name string) (*Scenario, error) {
	row := r.db.QueryRow(
		"SELECT name, description, data, created_at, updated_at FROM scenarios WHERE name = ?", name,
	)
	s, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario %s: %w", name, err)
	}
	return s, nil
}

// List returns every scenario ordered by name.
// Rows whose data cannot be decoded are skipped and logged.
func (r *Repository) List() ([]Scenario, error) {
	rows, err := r.db.Query("SELECT name, description, data, created_at, updated_at FROM scenarios ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	result := make([]Scenario, 0)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan scenario row")
			continue
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenarios: %w", err)
	}

	return result, nil
}

// Delete removes a scenario.
//
// Returns:
//   - error: ErrNotFound if it does not exist
func (r *Repository) Delete(name string) error {
	res, err := r.db.Exec("DELETE FROM scenarios WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// EnsurePresets inserts the preset scenarios that do not exist yet.
// Existing scenarios, including edited presets, are left alone.
//
// Returns:
//   - int: Number of presets inserted
//   - error: Database error
func (r *Repository) EnsurePresets() (int, error) {
	inserted := 0
	now := time.Now().Unix()

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, p := range Presets() {
			data, err := json.Marshal(p.Request)
			if err != nil {
				return err
			}
			res, err := tx.Exec(`
				INSERT INTO scenarios (name, description, data, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(name) DO NOTHING
			`, p.Name, p.Description, string(data), now, now)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count inserted preset %s: %w", p.Name, err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert preset scenarios: %w", err)
	}

	if inserted > 0 {
		r.log.Info().Int("count", inserted).Msg("Preset scenarios created")
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (*Scenario, error) {
	var (
		s                    Scenario
		data                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&s.Name, &s.Description, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var req simulation.Request
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", s.Name, err)
	}
	s.Request = req
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}
