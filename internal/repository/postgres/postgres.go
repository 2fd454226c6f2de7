// Package postgres implements repository.Store on PostgreSQL through GORM.
//
// It is selected instead of the embedded SQLite store when DATABASE_URL is
// configured. Table layout matches the SQLite schema; GORM's AutoMigrate
// creates it on start.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB is a GORM-backed store.
type DB struct {
	gorm *gorm.DB
}

// userRecord and programmerRecord are the GORM mappings. They stay private
// so the rest of the app only ever sees model types.
type userRecord struct {
	ID        string `gorm:"primaryKey;size:20"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"not null;default:''"`
	Password  string `gorm:"not null;default:''"`
	Roles     string `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

type programmerRecord struct {
	ID           string `gorm:"primaryKey;size:20"`
	Seq          int64  `gorm:"autoIncrement;not null"` // insertion order
	Nickname     string `gorm:"uniqueIndex;not null"`
	AvatarNumber int    `gorm:"not null"`
	TagLine      *string
	PowerLevel   int        `gorm:"not null;default:0"`
	UserID       string     `gorm:"size:20;not null;index"`
	User         userRecord `gorm:"constraint:OnDelete:RESTRICT"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (programmerRecord) TableName() string { return "programmers" }

// Open connects to PostgreSQL and migrates the schema.
//
// TranslateError makes GORM map driver unique violations to
// gorm.ErrDuplicatedKey, which the repository turns into apperror.ErrConflict.
func Open(dsn string) (*DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connecting: %w", err)
	}

	if err := db.AutoMigrate(&userRecord{}, &programmerRecord{}); err != nil {
		return nil, fmt.Errorf("postgres: migrating: %w", err)
	}

	return &DB{gorm: db}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return fmt.Errorf("postgres: getting pool: %w", err)
	}
	return sqlDB.Close()
}

// Purge empties both tables in one statement.
func (db *DB) Purge(ctx context.Context) error {
	if err := db.gorm.WithContext(ctx).Exec("TRUNCATE TABLE programmers, users").Error; err != nil {
		return fmt.Errorf("postgres: purging: %w", err)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func toUserRecord(u *model.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Roles:     strings.Join(u.Roles, ","),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r userRecord) toModel() *model.User {
	roles := []string{}
	if r.Roles != "" {
		roles = strings.Split(r.Roles, ",")
	}
	return &model.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		Roles:     roles,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toProgrammerRecord(p *model.Programmer) programmerRecord {
	return programmerRecord{
		ID:           p.ID,
		Nickname:     p.Nickname,
		AvatarNumber: p.AvatarNumber,
		TagLine:      p.TagLine,
		PowerLevel:   p.PowerLevel,
		UserID:       p.UserID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r programmerRecord) toModel() model.Programmer {
	return model.Programmer{
		ID:           r.ID,
		Nickname:     r.Nickname,
		AvatarNumber: r.AvatarNumber,
		TagLine:      r.TagLine,
		PowerLevel:   r.PowerLevel,
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
