package banners

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/cache"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

// PickSize is how many banners the landing page shows.
const PickSize = 3

type repository interface {
	ListActive(ctx context.Context) ([]models.Banner, error)
	Create(ctx context.Context, banner *models.Banner) error
	Update(ctx context.Context, banner *models.Banner) error
	Find(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type readCache interface {
	Get(ctx context.Context, key cache.Key, dest any) (bool, error)
	Set(ctx context.Context, key cache.Key, value any) error
	Invalidate(ctx context.Context, keys ...cache.Key) error
}

// DTO is one landing-page banner.
type DTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	ImageURL     string    `json:"image_url"`
	Text         string    `json:"text"`
}

// Input creates or updates a banner.
type Input struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Text      string    `json:"text"`
	IsActive  bool      `json:"is_active"`
}

// ServiceParams groups dependencies for the banner service.
type ServiceParams struct {
	Repo   repository
	Cache  readCache
	Logger *logger.Logger
}

// Service serves the landing-page banner pick and the admin CRUD.
type Service interface {
	Pick(ctx context.Context) ([]DTO, error)
	Create(ctx context.Context, input Input) (*models.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  repository
	cache readCache
	logg  *logger.Logger
}

// NewService builds a banner service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner repo is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, cache: params.Cache, logg: params.Logger}, nil
}

// Pick returns a random selection of active banners, all of them when fewer
// than the pick size exist. The active set is cached; the pick itself is
// fresh per request.
func (s *service) Pick(ctx context.Context) ([]DTO, error) {
	key := cache.Banners()

	var active []DTO
	hit, err := s.cache.Get(ctx, key, &active)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "banner cache read failed")
	}
	if !hit {
		rows, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load banners")
		}
		active = make([]DTO, 0, len(rows))
		for _, row := range rows {
			active = append(active, toDTO(row))
		}
		if err := s.cache.Set(ctx, key, active); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "banner cache write failed")
		}
	}

	if len(active) <= PickSize {
		return active, nil
	}
	picked := make([]DTO, len(active))
	copy(picked, active)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:PickSize], nil
}

// Create inserts a banner and drops the cached set.
func (s *service) Create(ctx context.Context, input Input) (*models.Banner, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	banner := &models.Banner{
		ProductID: input.ProductID,
		Text:      input.Text,
		IsActive:  input.IsActive,
	}
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create banner")
	}
	s.invalidate(ctx)
	return banner, nil
}

// Update saves banner changes and drops the cached set.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Banner, error) {
	banner, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load banner")
	}
	if input.ProductID != uuid.Nil {
		banner.ProductID = input.ProductID
	}
	banner.Text = input.Text
	banner.IsActive = input.IsActive
	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update banner")
	}
	s.invalidate(ctx)
	return banner, nil
}

// Delete removes a banner and drops the cached set.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete banner")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.Banners()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "banner cache invalidation failed")
	}
}

func toDTO(banner models.Banner) DTO {
	dto := DTO{
		ID:        banner.ID,
		ProductID: banner.ProductID,
		Text:      banner.Text,
	}
	if banner.Product != nil {
		dto.ProductTitle = banner.Product.Title
		dto.ImageURL = banner.Product.ImageURL
	}
	return dto
}
