// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → binds payloads, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never a concrete store, so the same
// code runs against SQLite, Postgres or the in-memory fakes in the tests.
// Nothing here knows about HTTP: payloads arrive as form.Payload and errors
// leave as apperror values for the handler to translate.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/form"
	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
)

// ErrNoCreator means no user could be found to own a new programmer. It is
// not an apperror, so handlers report it as a 500.
var ErrNoCreator = errors.New("service: creator user not found")

// ProgrammerService handles programmer CRUD.
type ProgrammerService struct {
	programmers repository.ProgrammerRepository
	users       repository.UserRepository
	binder      *form.ProgrammerBinder
	creator     string // username used when the request is anonymous
	logger      *slog.Logger
}

// NewProgrammerService creates a ProgrammerService. defaultCreator names the
// user that owns programmers created without an authenticated user.
func NewProgrammerService(
	programmers repository.ProgrammerRepository,
	users repository.UserRepository,
	binder *form.ProgrammerBinder,
	defaultCreator string,
	logger *slog.Logger,
) *ProgrammerService {
	return &ProgrammerService{
		programmers: programmers,
		users:       users,
		binder:      binder,
		creator:     defaultCreator,
		logger:      logger,
	}
}

// Create binds data onto a new programmer, attaches its owner and saves it.
//
// userID is the authenticated user, or "" for anonymous requests, in which
// case the configured default creator becomes the owner.
func (s *ProgrammerService) Create(ctx context.Context, data form.Payload, userID string) (*model.Programmer, error) {
	programmer := &model.Programmer{}
	if err := s.binder.Bind(data, programmer, form.Options{ClearMissing: true}); err != nil {
		return nil, err
	}

	owner, err := s.resolveCreator(ctx, userID)
	if err != nil {
		s.logger.Error("failed to resolve programmer creator",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	programmer.UserID = owner.ID

	if err := s.programmers.Create(ctx, programmer); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create programmer",
			slog.String("nickname", programmer.Nickname),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating programmer: %w", err)
	}

	s.logger.Info("programmer created",
		slog.String("nickname", programmer.Nickname),
		slog.String("owner", owner.Username),
	)

	return programmer, nil
}

// resolveCreator returns the authenticated user, falling back to the
// default creator account.
func (s *ProgrammerService) resolveCreator(ctx context.Context, userID string) (*model.User, error) {
	if userID != "" {
		user, err := s.users.FindUserByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("loading user %s: %w", userID, err)
		}
		// A token for a purged user: fall through to the default creator.
	}

	user, err := s.users.FindUserByUsername(ctx, s.creator)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNoCreator, s.creator)
	}
	if err != nil {
		return nil, fmt.Errorf("loading creator %q: %w", s.creator, err)
	}
	return user, nil
}

// Get returns the programmer with the given nickname.
// Returns apperror.ErrNotFound if there is none.
func (s *ProgrammerService) Get(ctx context.Context, nickname string) (*model.Programmer, error) {
	return s.programmers.FindByNickname(ctx, nickname)
}

// List returns every programmer in insertion order.
func (s *ProgrammerService) List(ctx context.Context) ([]model.Programmer, error) {
	programmers, err := s.programmers.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list programmers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing programmers: %w", err)
	}
	return programmers, nil
}

// Update applies data to an existing programmer. The nickname never changes.
//
// clearMissing selects the semantics: true is a full replace (PUT), where
// absent fields are reset; false is a partial update (PATCH), where absent
// fields keep their stored value.
func (s *ProgrammerService) Update(ctx context.Context, nickname string, data form.Payload, clearMissing bool) (*model.Programmer, error) {
	programmer, err := s.programmers.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}

	opts := form.Options{Editing: true, ClearMissing: clearMissing}
	if err := s.binder.Bind(data, programmer, opts); err != nil {
		return nil, err
	}

	if err := s.programmers.Update(ctx, programmer); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update programmer",
			slog.String("nickname", nickname),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating programmer: %w", err)
	}

	s.logger.Info("programmer updated",
		slog.String("nickname", programmer.Nickname),
		slog.Bool("replace", clearMissing),
	)

	return programmer, nil
}

// Delete removes the programmer with the given nickname. Deleting a
// nickname that does not exist is not an error.
func (s *ProgrammerService) Delete(ctx context.Context, nickname string) error {
	programmer, err := s.programmers.FindByNickname(ctx, nickname)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Someone else may have removed it between the lookup and here.
	if err := s.programmers.Delete(ctx, programmer.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		s.logger.Error("failed to delete programmer",
			slog.String("nickname", nickname),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting programmer: %w", err)
	}

	s.logger.Info("programmer deleted", slog.String("nickname", nickname))
	return nil
}
