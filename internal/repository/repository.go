// Package repository declares the storage contracts the service layer
// depends on. Implementations live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/programmer-battle/internal/model"
)

// ProgrammerRepository looks programmers up by their natural key and
// persists changes. Each write is committed atomically before it returns.
//
// FindByNickname returns an apperror.ErrNotFound error when no row matches.
// FindAll returns programmers in insertion order.
// Create and Update return an apperror.ErrConflict error when the nickname
// collides with an existing row.
type ProgrammerRepository interface {
	FindByNickname(ctx context.Context, nickname string) (*model.Programmer, error)
	FindAll(ctx context.Context) ([]model.Programmer, error)
	Create(ctx context.Context, programmer *model.Programmer) error
	Update(ctx context.Context, programmer *model.Programmer) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores the accounts that own programmers.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	// FindAnyUser returns the first user ever created. Test fixtures use it
	// to pick an owner when none is given.
	FindAnyUser(ctx context.Context) (*model.User, error)
}

// Store is a complete storage backend.
type Store interface {
	ProgrammerRepository
	UserRepository

	// Purge deletes every row from every table. Used by the API test harness
	// to start each test from an empty database.
	Purge(ctx context.Context) error
	Close() error
}
