package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
)

func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if len(user.Roles) == 0 {
		user.Roles = []string{model.DefaultRole}
	}

	rec := toUserRecord(user)
	if err := db.gorm.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("user", "username", user.Username)
		}
		return fmt.Errorf("postgres: inserting user %q: %w", user.Username, err)
	}
	return nil
}

func (db *DB) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.findUser(ctx, "id", id)
}

func (db *DB) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.findUser(ctx, "username", username)
}

func (db *DB) FindAnyUser(ctx context.Context) (*model.User, error) {
	var rec userRecord
	err := db.gorm.WithContext(ctx).Order("created_at, id").Take(&rec).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user", "id", "any")
		}
		return nil, fmt.Errorf("postgres: finding any user: %w", err)
	}
	return rec.toModel(), nil
}

func (db *DB) findUser(ctx context.Context, column, value string) (*model.User, error) {
	var rec userRecord
	err := db.gorm.WithContext(ctx).Where(column+" = ?", value).Take(&rec).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user", column, value)
		}
		return nil, fmt.Errorf("postgres: getting user by %s %q: %w", column, value, err)
	}
	return rec.toModel(), nil
}
