package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
)

// AttributeInput is an admin request to define a characteristic.
type AttributeInput struct {
	Name       string     `json:"name" validate:"required"`
	Unit       string     `json:"unit"`
	Group      string     `json:"group"`
	CategoryID *uuid.UUID `json:"category_id"`
}

func (r *Repository) AttributeNameTaken(ctx context.Context, group, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attribute{}).
		Where("group_name = ? AND LOWER(name) = LOWER(?)", group, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateAttribute(ctx context.Context, attribute *models.Attribute) error {
	return r.db.WithContext(ctx).Create(attribute).Error
}

// CreateAttribute defines a new characteristic. Names are unique within
// their group, case-insensitively.
func (s *service) CreateAttribute(ctx context.Context, input AttributeInput) (*models.Attribute, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attribute name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	group := strings.TrimSpace(input.Group)

	taken, err := s.repo.AttributeNameTaken(ctx, group, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking attribute name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attribute name already used in this group").
			WithDetails(map[string]any{"field": "name"})
	}

	attribute := &models.Attribute{
		Name:       name,
		Unit:       strings.TrimSpace(input.Unit),
		Group:      group,
		CategoryID: input.CategoryID,
	}
	if err := s.repo.CreateAttribute(ctx, attribute); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating attribute")
	}
	return attribute, nil
}
