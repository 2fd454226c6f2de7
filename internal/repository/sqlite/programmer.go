package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
)

// compile-time check that *DB implements repository.ProgrammerRepository
var _ repository.ProgrammerRepository = (*DB)(nil)

const programmerColumns = `id, nickname, avatar_number, tag_line, power_level, user_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgrammer(row rowScanner) (*model.Programmer, error) {
	var (
		p       model.Programmer
		tagLine sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.Nickname,
		&p.AvatarNumber,
		&tagLine,
		&p.PowerLevel,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if tagLine.Valid {
		s := tagLine.String
		p.TagLine = &s
	}
	return &p, nil
}

// nullableString maps a nil pointer to SQL NULL.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new programmer. The ID and timestamps are assigned here
// and written back into the caller's struct.
//
// A duplicate nickname trips the UNIQUE constraint and comes back as
// apperror.ErrConflict; nothing is pre-checked with a SELECT, so two racing
// creates cannot both succeed.
func (db *DB) Create(ctx context.Context, p *model.Programmer) error {
	p.ID = xid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO programmers (`+programmerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Nickname,
		p.AvatarNumber,
		nullableString(p.TagLine),
		p.PowerLevel,
		p.UserID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("programmer", "nickname", p.Nickname)
		}
		return fmt.Errorf("sqlite: creating programmer %q: %w", p.Nickname, err)
	}

	return nil
}

// FindByNickname retrieves a single programmer by its unique nickname.
func (db *DB) FindByNickname(ctx context.Context, nickname string) (*model.Programmer, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+programmerColumns+`
		 FROM programmers
		 WHERE nickname = ?`,
		nickname,
	)

	p, err := scanProgrammer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("programmer", "nickname", nickname)
		}
		return nil, fmt.Errorf("sqlite: finding programmer %q: %w", nickname, err)
	}

	return p, nil
}

// FindAll returns every programmer in insertion order.
//
// rowid grows with each insert and is never reused for a live row, so
// ordering by it reproduces creation order without a timestamp tie-break.
func (db *DB) FindAll(ctx context.Context) ([]model.Programmer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+programmerColumns+`
		 FROM programmers
		 ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing programmers: %w", err)
	}
	defer rows.Close()

	programmers := []model.Programmer{}
	for rows.Next() {
		p, err := scanProgrammer(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning programmer row: %w", err)
		}
		programmers = append(programmers, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating programmers: %w", err)
	}

	return programmers, nil
}

// Update writes the mutable fields of an existing programmer.
//
// nickname and user_id are not in the SET clause: both are fixed at creation.
func (db *DB) Update(ctx context.Context, p *model.Programmer) error {
	p.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE programmers
		 SET avatar_number = ?, tag_line = ?, power_level = ?, updated_at = ?
		 WHERE id = ?`,
		p.AvatarNumber,
		nullableString(p.TagLine),
		p.PowerLevel,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("programmer", "nickname", p.Nickname)
		}
		return fmt.Errorf("sqlite: updating programmer %q: %w", p.Nickname, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("programmer", "nickname", p.Nickname)
	}

	return nil
}

// Delete removes a programmer by its internal ID.
// Returns apperror.ErrNotFound when no row was deleted.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM programmers WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting programmer %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("programmer", "id", id)
	}

	return nil
}
