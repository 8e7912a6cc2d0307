package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const selectColumns = `id, kind, tournament_title, place, court, group_name, round_type, gender, match_type,
	player1, player2, score1, score2, created_at, status`

// store handles all database operations for match records.
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time

	// lastCreated is the newest creation stamp handed out, guarded by mu.
	lastCreated time.Time
	seeded      bool
}

// New creates a new Store backed by db.
func New(db *sql.DB) Store {
	return NewWithClock(db, time.Now)
}

// NewWithClock creates a Store that stamps new matches with now.
func NewWithClock(db *sql.DB, now func() time.Time) Store {
	return &store{
		db:  db,
		now: now,
	}
}

// Create inserts m as a pending match and stamps m.CreatedAt. The stamp is
// taken under the write lock and never goes backwards, so (created_at, id)
// order always matches insertion order.
func (s *store) Create(ctx context.Context, m *Match) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		var latest sql.NullInt64
		if err := s.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM matches").Scan(&latest); err != nil {
			return 0, fmt.Errorf("failed to read latest creation time: %w", err)
		}
		if latest.Valid {
			s.lastCreated = time.Unix(0, latest.Int64)
		}
		s.seeded = true
	}
	createdAt := s.now()
	if createdAt.Before(s.lastCreated) {
		createdAt = s.lastCreated
	}

	var roundType, gender, matchType sql.NullString
	if m.Tags != nil {
		roundType = sql.NullString{String: m.Tags.RoundType, Valid: true}
		gender = sql.NullString{String: m.Tags.Gender, Valid: true}
		matchType = sql.NullString{String: m.Tags.MatchType, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (kind, tournament_title, place, court, group_name, round_type, gender, match_type,
			player1, player2, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(m.Scope.Kind), m.Scope.Tournament, m.Scope.Place, m.Scope.Court, m.Scope.Group,
		roundType, gender, matchType,
		m.Player1, m.Player2, createdAt.UnixNano(), string(StatusPending),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new match id: %w", err)
	}
	m.CreatedAt = time.Unix(0, createdAt.UnixNano())
	s.lastCreated = m.CreatedAt
	log.Debug("Inserted match", "id", id, "scope", m.Scope)
	return id, nil
}

func (s *store) Get(ctx context.Context, id int64) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM matches WHERE id = ?", id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (s *store) Find(ctx context.Context, f Filter) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := f.clause()
	query := "SELECT " + selectColumns + " FROM matches" + where + " ORDER BY created_at ASC, id ASC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []*Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}

func (s *store) Update(ctx context.Context, id int64, e Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"round_type", e.RoundType},
		{"gender", e.Gender},
		{"match_type", e.MatchType},
		{"player1", e.Player1},
		{"player2", e.Player2},
	} {
		if field.value != nil {
			sets = append(sets, field.column+" = ?")
			args = append(args, *field.value)
		}
	}

	if len(sets) == 0 {
		var exists bool
		err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM matches WHERE id = ?)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check match: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE matches SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return expectOneRow(res, id)
}

func (s *store) SetResult(ctx context.Context, id int64, score1, score2 int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE matches SET score1 = ?, score2 = ?, status = ? WHERE id = ?",
		score1, score2, string(StatusFinished), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set match result: %w", err)
	}
	return expectOneRow(res, id)
}

func (s *store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var (
		m                            Match
		kind, status                 string
		roundType, gender, matchType sql.NullString
		score1, score2               sql.NullInt64
		createdAt                    int64
	)
	err := scanner.Scan(
		&m.ID, &kind, &m.Scope.Tournament, &m.Scope.Place, &m.Scope.Court, &m.Scope.Group,
		&roundType, &gender, &matchType,
		&m.Player1, &m.Player2, &score1, &score2, &createdAt, &status,
	)
	if err != nil {
		return nil, err
	}

	m.Scope.Kind = Kind(kind)
	m.Status = Status(status)
	m.CreatedAt = time.Unix(0, createdAt)
	if roundType.Valid || gender.Valid || matchType.Valid {
		m.Tags = &Tags{RoundType: roundType.String, Gender: gender.String, MatchType: matchType.String}
	}
	if score1.Valid {
		v := int(score1.Int64)
		m.Score1 = &v
	}
	if score2.Valid {
		v := int(score2.Int64)
		m.Score2 = &v
	}
	return &m, nil
}

// clause renders the filter as a WHERE clause and its arguments.
func (f Filter) clause() (string, []any) {
	var conds []string
	var args []any
	eq := func(column, value string) {
		if value != "" {
			conds = append(conds, column+" = ?")
			args = append(args, value)
		}
	}

	if f.Scope != nil {
		conds = append(conds, "kind = ?", "tournament_title = ?", "place = ?", "court = ?", "group_name = ?")
		args = append(args, string(f.Scope.Kind), f.Scope.Tournament, f.Scope.Place, f.Scope.Court, f.Scope.Group)
	}
	eq("status", string(f.Status))
	eq("kind", string(f.Kind))
	eq("tournament_title", f.Tournament)
	eq("place", f.Place)
	eq("court", f.Court)
	eq("group_name", f.Group)
	eq("round_type", f.RoundType)
	eq("gender", f.Gender)
	eq("match_type", f.MatchType)
	if f.Player != "" {
		conds = append(conds, "(instr(lower(player1), lower(?)) > 0 OR instr(lower(player2), lower(?)) > 0)")
		args = append(args, f.Player, f.Player)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
