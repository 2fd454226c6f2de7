package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password, roles, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u     model.User
		roles string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&roles,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Roles = splitRoles(roles)
	return &u, nil
}

// Roles are stored as one comma-separated column; a user has a handful at most.
func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// CreateUser inserts a new user. A taken username comes back as
// apperror.ErrConflict from the UNIQUE constraint.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if len(user.Roles) == 0 {
		user.Roles = []string{model.DefaultRole}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.Password,
		joinRoles(user.Roles),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// FindUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.findUser(ctx, "id", id)
}

// FindUserByUsername retrieves a user by their unique username.
func (db *DB) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.findUser(ctx, "username", username)
}

// FindAnyUser returns the earliest created user.
func (db *DB) FindAnyUser(ctx context.Context) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY rowid LIMIT 1`,
	)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", "id", "any")
		}
		return nil, fmt.Errorf("sqlite: finding any user: %w", err)
	}
	return u, nil
}

// findUser looks a user up by one of the unique columns. column is always a
// constant from this file, never user input.
func (db *DB) findUser(ctx context.Context, column, value string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", column, value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s %q: %w", column, value, err)
	}
	return u, nil
}
