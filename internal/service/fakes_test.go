package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/model"
)

// fakeStore is an in-memory implementation of both ProgrammerRepository
// and UserRepository. Values are copied in and out so tests cannot reach
// into its state through a returned pointer.
type fakeStore struct {
	programmers []model.Programmer // insertion order
	users       []model.User
	nextID      int

	// set to a non-nil error to simulate a database failure
	findAllErr error
	updateErr  error
	deleteErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("fake-%d", f.nextID)
}

func (f *fakeStore) FindByNickname(_ context.Context, nickname string) (*model.Programmer, error) {
	for _, p := range f.programmers {
		if p.Nickname == nickname {
			found := p
			return &found, nil
		}
	}
	return nil, apperror.NotFound("programmer", "nickname", nickname)
}

func (f *fakeStore) FindAll(_ context.Context) ([]model.Programmer, error) {
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	return append([]model.Programmer{}, f.programmers...), nil
}

func (f *fakeStore) Create(_ context.Context, p *model.Programmer) error {
	for _, existing := range f.programmers {
		if existing.Nickname == p.Nickname {
			return apperror.Conflict("programmer", "nickname", p.Nickname)
		}
	}
	p.ID = f.id()
	f.programmers = append(f.programmers, *p)
	return nil
}

func (f *fakeStore) Update(_ context.Context, p *model.Programmer) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.programmers {
		if f.programmers[i].ID == p.ID {
			// Nickname and owner are never rewritten.
			f.programmers[i].AvatarNumber = p.AvatarNumber
			f.programmers[i].TagLine = p.TagLine
			f.programmers[i].PowerLevel = p.PowerLevel
			return nil
		}
	}
	return apperror.NotFound("programmer", "id", p.ID)
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.programmers {
		if f.programmers[i].ID == id {
			f.programmers = append(f.programmers[:i], f.programmers[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("programmer", "id", id)
}

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Conflict("user", "username", u.Username)
		}
	}
	u.ID = f.id()
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NotFound("user", "id", id)
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NotFound("user", "username", username)
}

func (f *fakeStore) FindAnyUser(_ context.Context) (*model.User, error) {
	if len(f.users) == 0 {
		return nil, apperror.NotFound("user", "id", "any")
	}
	found := f.users[0]
	return &found, nil
}

// addUser stores a user directly, bypassing hashing.
func (f *fakeStore) addUser(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Roles: []string{model.DefaultRole}}
	if err := f.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("addUser(%q): %v", username, err)
	}
	return u
}

var errDatabaseDown = errors.New("database is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
