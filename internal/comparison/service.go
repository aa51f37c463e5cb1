package comparison

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/internal/catalog"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/session"
)

const ungroupedName = "General"

type repository interface {
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// ServiceParams groups dependencies for the comparison service.
type ServiceParams struct {
	Repo repository
}

// Service maintains the session-backed comparison selection and renders the
// comparison table.
type Service interface {
	Add(state *session.State, productID uuid.UUID) bool
	Remove(state *session.State, productID uuid.UUID) bool
	Clear(state *session.State)
	Count(state *session.State) int
	Build(ctx context.Context, state *session.State) (TableDTO, error)
}

type service struct {
	repo repository
}

// NewService builds a comparison service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comparison repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Add(state *session.State, productID uuid.UUID) bool {
	return state.AddComparison(productID.String())
}

func (s *service) Remove(state *session.State, productID uuid.UUID) bool {
	return state.RemoveComparison(productID.String())
}

func (s *service) Clear(state *session.State) {
	state.ClearComparison()
}

func (s *service) Count(state *session.State) int {
	return len(state.Comparison)
}

// Build renders the comparison table in selection order. Characteristics
// absent from any selected product are dropped; rows with identical values
// everywhere are marked Same, and groups where every row is Same are marked
// Hidden.
func (s *service) Build(ctx context.Context, state *session.State) (TableDTO, error) {
	ids := make([]uuid.UUID, 0, len(state.Comparison))
	for _, raw := range state.Comparison {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return TableDTO{Count: len(ids)}, nil
	}

	rows, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return TableDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comparison products")
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, product := range rows {
		byID[product.ID] = product
	}

	// Deleted products may linger in the session; keep only the ones that
	// still exist, in selection order.
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			products = append(products, product)
		}
	}
	if len(products) < 2 {
		return TableDTO{Count: len(products)}, nil
	}

	table := TableDTO{Count: len(products), Enough: true}
	for _, product := range products {
		table.Products = append(table.Products, ColumnDTO{
			ID:           product.ID,
			Title:        product.Title,
			Slug:         product.Slug,
			ImageURL:     product.ImageURL,
			AveragePrice: averagePrice(product.Listings),
		})
	}
	table.Groups = buildGroups(products)
	return table, nil
}

type attributeKey struct {
	group string
	name  string
}

// buildGroups intersects the characteristics of all products and groups the
// surviving rows, preserving the first product's ordering.
func buildGroups(products []models.Product) []GroupDTO {
	values := make(map[attributeKey][]string)
	var order []attributeKey

	for index, product := range products {
		for _, attr := range product.Attributes {
			if attr.Attribute == nil {
				continue
			}
			key := attributeKey{group: groupName(attr.Attribute.Group), name: attr.Attribute.Name}
			row, seen := values[key]
			if !seen {
				if index > 0 {
					// Not on the first product, can never be on all of them.
					continue
				}
				row = make([]string, len(products))
				order = append(order, key)
			}
			row[index] = formatValue(attr.Value, attr.Attribute.Unit)
			values[key] = row
		}
	}

	groups := make([]GroupDTO, 0)
	groupIndex := make(map[string]int)
	for _, key := range order {
		row := values[key]
		if !completeRow(row) {
			continue
		}
		position, seen := groupIndex[key.group]
		if !seen {
			position = len(groups)
			groupIndex[key.group] = position
			groups = append(groups, GroupDTO{Name: key.group, Hidden: true})
		}
		dto := RowDTO{Name: key.name, Values: row, Same: allSame(row)}
		if !dto.Same {
			groups[position].Hidden = false
		}
		groups[position].Rows = append(groups[position].Rows, dto)
	}
	return groups
}

func groupName(name string) string {
	if name == "" {
		return ungroupedName
	}
	return name
}

func formatValue(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

func completeRow(row []string) bool {
	for _, value := range row {
		if value == "" {
			return false
		}
	}
	return true
}

func allSame(row []string) bool {
	for _, value := range row[1:] {
		if value != row[0] {
			return false
		}
	}
	return true
}

func averagePrice(listings []models.SellerProduct) decimal.Decimal {
	dtos := make([]catalog.ListingDTO, 0, len(listings))
	for _, listing := range listings {
		dtos = append(dtos, catalog.ListingDTO{Price: listing.Price})
	}
	return catalog.AverageListingPrice(dtos)
}
