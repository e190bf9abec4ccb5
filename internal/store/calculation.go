package store

import (
	"database/sql"
	"time"
)

// DefaultListLimit is used when a non-positive limit is requested.
const DefaultListLimit = 50

// Calculation is one entry on the calculation tape.
type Calculation struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Left      float64   `json:"left"`
	Operator  string    `json:"operator"`
	Right     float64   `json:"right"`
	Result    float64   `json:"result"`
	Entry     string    `json:"entry"`
	CreatedAt time.Time `json:"created_at"`
}

// CalculationRepository provides operations on the calculation tape.
type CalculationRepository struct {
	db *sql.DB
}

// Calculations returns the calculation repository for this store.
func (s *Store) Calculations() *CalculationRepository {
	return &CalculationRepository{db: s.db}
}

// Create appends c to the tape and fills in its ID and CreatedAt.
func (r *CalculationRepository) Create(c *Calculation) error {
	c.CreatedAt = time.Now().UTC()

	result, err := r.db.Exec(
		`INSERT INTO calculations (session_id, left_operand, operator, right_operand, result, entry, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.Left, c.Operator, c.Right, c.Result, c.Entry, c.CreatedAt,
	)
	if err != nil {
		return err
	}

	c.ID, err = result.LastInsertId()
	return err
}

// ListRecent returns up to limit calculations, newest first.
func (r *CalculationRepository) ListRecent(limit int) ([]*Calculation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.query(
		`SELECT id, session_id, left_operand, operator, right_operand, result, entry, created_at
		 FROM calculations ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// ListBySession returns a session's calculations in the order they happened.
func (r *CalculationRepository) ListBySession(sessionID string) ([]*Calculation, error) {
	return r.query(
		`SELECT id, session_id, left_operand, operator, right_operand, result, entry, created_at
		 FROM calculations WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
}

// Count returns the number of calculations on the tape.
func (r *CalculationRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM calculations`).Scan(&n)
	return n, err
}

func (r *CalculationRepository) query(q string, args ...any) ([]*Calculation, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []*Calculation
	for rows.Next() {
		c := &Calculation{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Left, &c.Operator, &c.Right, &c.Result, &c.Entry, &c.CreatedAt); err != nil {
			return nil, err
		}
		calcs = append(calcs, c)
	}
	return calcs, rows.Err()
}
