package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/repository"
)

// UserService mirrors identity-provider accounts into internal users.
type UserService interface {
	// Sync returns the caller's internal user, creating it on first access.
	Sync(ctx context.Context) (*model.User, error)
}

type UserServiceImpl struct {
	guard *Guard
	users repository.UserRepository
	log   *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(guard *Guard, users repository.UserRepository, log *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{guard: guard, users: users, log: log}
}

// Sync is idempotent; a concurrent first access resolves to the winner's row.
func (s *UserServiceImpl) Sync(ctx context.Context) (*model.User, error) {
	id, err := s.guard.identify(ctx)
	if err != nil {
		logFail(s.log, "sync user", err)
		return nil, err
	}

	u, err := s.users.GetByExternalID(ctx, id.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		err = storeErr(err, nil)
		logFail(s.log, "sync user", err)
		return nil, err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	u = &model.User{ID: uid, ExternalID: id.Subject, Email: id.Email, Name: id.Name}
	err = s.users.Create(ctx, u)
	if errors.Is(err, errs.ErrAlreadyExists) {
		u, err = s.users.GetByExternalID(ctx, id.Subject)
	}
	if err != nil {
		err = storeErr(err, errs.ErrUserNotFound)
		logFail(s.log, "sync user", err)
		return nil, err
	}
	s.log.Info("user synced", zap.String("user_id", u.ID.String()))
	return u, nil
}
