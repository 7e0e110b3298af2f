package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/invalidate"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/repository"
)

// CollectionService defines collection actions.
type CollectionService interface {
	Create(ctx context.Context, in model.CollectionInput) (*model.Collection, error)
	// Delete removes an owned collection and detaches its entries.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Collection, error)
}

type CollectionServiceImpl struct {
	guard *Guard
	repo  repository.CollectionRepository
	inv   invalidate.Invalidator
	log   *zap.Logger
}

// NewCollectionService constructs CollectionService.
func NewCollectionService(guard *Guard, repo repository.CollectionRepository, inv invalidate.Invalidator, log *zap.Logger) *CollectionServiceImpl {
	return &CollectionServiceImpl{guard: guard, repo: repo, inv: inv, log: log}
}

// Create stores a new collection for the caller.
func (s *CollectionServiceImpl) Create(ctx context.Context, in model.CollectionInput) (*model.Collection, error) {
	c, err := s.create(ctx, in)
	if err != nil {
		logFail(s.log, "create collection", err)
		return nil, err
	}
	return c, nil
}

func (s *CollectionServiceImpl) create(ctx context.Context, in model.CollectionInput) (*model.Collection, error) {
	u, err := s.guard.caller(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Invalid("collection name is required")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Collection{ID: id, UserID: u.ID, Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, storeErr(err, nil)
	}
	if err := s.inv.Invalidate(ctx, invalidate.DashboardView); err != nil {
		s.log.Warn("invalidate failed", zap.Error(err))
	}
	return c, nil
}

// Delete checks ownership, then detaches entries and removes the collection.
func (s *CollectionServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.delete(ctx, id)
	if err != nil {
		logFail(s.log, "delete collection", err)
	}
	return err
}

func (s *CollectionServiceImpl) delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.guard.caller(ctx)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, u.ID, id); err != nil {
		return storeErr(err, errs.ErrCollectionNotFound)
	}
	detached, err := s.repo.Delete(ctx, u.ID, id)
	if err != nil {
		return storeErr(err, errs.ErrCollectionNotFound)
	}
	s.log.Info("collection deleted", zap.String("collection_id", id.String()), zap.Int64("detached", detached))

	views := []string{invalidate.DashboardView, invalidate.CollectionView(&id), invalidate.CollectionView(nil)}
	if err := s.inv.Invalidate(ctx, views...); err != nil {
		s.log.Warn("invalidate failed", zap.Strings("views", views), zap.Error(err))
	}
	return nil
}

// List returns the caller's collections, newest first.
func (s *CollectionServiceImpl) List(ctx context.Context) ([]model.Collection, error) {
	u, err := s.guard.caller(ctx)
	if err == nil {
		var out []model.Collection
		if out, err = s.repo.ListByUser(ctx, u.ID); err == nil {
			return out, nil
		}
		err = storeErr(err, nil)
	}
	logFail(s.log, "list collections", err)
	return nil, err
}
