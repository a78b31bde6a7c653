package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/agrohub/farm_market/internal/apperr"
	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/events"
	"github.com/agrohub/farm_market/internal/logging"
	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/repo"
	"github.com/agrohub/farm_market/internal/search"
)

// Fields carries the raw listing form values; price and quantity arrive as
// text and are validated here, before any store write.
type Fields struct {
	Name     string
	Price    string
	Quantity string
	ImageURL string
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Producer events.Publisher
	ES       *elasticsearch.Client
	ESIndex  string
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return prod, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return items, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s.ES == nil {
		return 0, nil, apperr.Invalid("search is not configured")
	}
	return search.Products(ctx, s.ES, s.ESIndex, query, from, size)
}

func (s *CatalogService) CreateProduct(ctx context.Context, sess auth.Session, f Fields) (*models.Product, error) {
	if err := auth.Authorize(sess, auth.ActionCreateProduct, sess.UserID); err != nil {
		return nil, err
	}

	name, price, quantity, err := validateFields(f)
	if err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:     name,
		Price:    price,
		Quantity: quantity,
		ImageURL: f.ImageURL,
		OwnerID:  sess.UserID,
	}
	if _, err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, apperr.Store(err)
	}

	s.publish(ctx, events.TypeProductCreated, prod.ID, map[string]any{
		"type":       events.TypeProductCreated,
		"product_id": prod.ID.String(),
		"name":       prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, sess auth.Session, id uuid.UUID, f Fields) (*models.Product, error) {
	name, price, quantity, err := validateFields(f)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if err := auth.Authorize(sess, auth.ActionMutateProduct, prod.OwnerID); err != nil {
		return nil, err
	}

	prod.Name = name
	prod.Price = price
	prod.Quantity = quantity
	if f.ImageURL != "" {
		prod.ImageURL = f.ImageURL
	}
	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, apperr.Store(err)
	}

	s.publish(ctx, events.TypeProductUpdated, prod.ID, map[string]any{
		"type":       events.TypeProductUpdated,
		"product_id": prod.ID.String(),
		"name":       prod.Name,
	})
	return prod, nil
}

// DeleteProduct refuses to remove a listing that cart lines or pending orders
// still reference; hard-deleting those would leave dangling product ids.
func (s *CatalogService) DeleteProduct(ctx context.Context, sess auth.Session, id uuid.UUID) error {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if err := auth.Authorize(sess, auth.ActionDeleteProduct, prod.OwnerID); err != nil {
		return err
	}

	cartRefs, orderRefs, err := s.Repo.CountProductRefs(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if cartRefs > 0 || orderRefs > 0 {
		return apperr.ErrConflict
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return apperr.Store(err)
	}

	s.publish(ctx, events.TypeProductDeleted, id, map[string]any{
		"type":       events.TypeProductDeleted,
		"product_id": id.String(),
	})
	return nil
}

func (s *CatalogService) publish(ctx context.Context, kind string, key uuid.UUID, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.Publish(ctx, key.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", kind, "error", err)
	}
}

func validateFields(f Fields) (name string, price float64, quantity uint, err error) {
	name = strings.TrimSpace(f.Name)
	if name == "" {
		return "", 0, 0, apperr.Invalid("name must not be empty")
	}

	price, perr := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if perr != nil || price <= 0 {
		return "", 0, 0, apperr.Invalid("price must be a number > 0")
	}

	q, qerr := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if qerr != nil || q < 1 {
		return "", 0, 0, apperr.Invalid("quantity must be an integer >= 1")
	}

	return name, price, uint(q), nil
}
