package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
)

// Create inserts a programmer; a taken nickname is apperror.ErrConflict.
func (db *DB) Create(ctx context.Context, p *model.Programmer) error {
	now := time.Now()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	rec := toProgrammerRecord(p)
	// Omit the association so GORM does not try to upsert the owner.
	if err := db.gorm.WithContext(ctx).Omit("User").Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("programmer", "nickname", p.Nickname)
		}
		return fmt.Errorf("postgres: creating programmer %q: %w", p.Nickname, err)
	}
	return nil
}

func (db *DB) FindByNickname(ctx context.Context, nickname string) (*model.Programmer, error) {
	var rec programmerRecord
	err := db.gorm.WithContext(ctx).Where("nickname = ?", nickname).Take(&rec).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("programmer", "nickname", nickname)
		}
		return nil, fmt.Errorf("postgres: finding programmer %q: %w", nickname, err)
	}
	p := rec.toModel()
	return &p, nil
}

// FindAll returns programmers ordered by their insertion sequence.
func (db *DB) FindAll(ctx context.Context) ([]model.Programmer, error) {
	var recs []programmerRecord
	if err := db.gorm.WithContext(ctx).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("postgres: listing programmers: %w", err)
	}

	programmers := make([]model.Programmer, 0, len(recs))
	for _, rec := range recs {
		programmers = append(programmers, rec.toModel())
	}
	return programmers, nil
}

// Update writes only the mutable columns; nickname and user_id are never
// part of the update.
func (db *DB) Update(ctx context.Context, p *model.Programmer) error {
	p.UpdatedAt = time.Now()

	result := db.gorm.WithContext(ctx).
		Model(&programmerRecord{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"avatar_number": p.AvatarNumber,
			"tag_line":      p.TagLine,
			"power_level":   p.PowerLevel,
			"updated_at":    p.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("postgres: updating programmer %q: %w", p.Nickname, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("programmer", "nickname", p.Nickname)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result := db.gorm.WithContext(ctx).Delete(&programmerRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("postgres: deleting programmer %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("programmer", "id", id)
	}
	return nil
}
