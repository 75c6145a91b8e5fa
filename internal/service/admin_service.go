package service

import (
	"context"
	"fmt"

	"github.com/nexusmart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RecentLimit is how many products the dashboard lists.
const RecentLimit = 5

// ProductAdmin is the catalog surface the admin area manages.
type ProductAdmin interface {
	CountProducts(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CacheInvalidator drops cached copies of a product after it changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id int64)
}

type Dashboard struct {
	TotalProducts  int64             `json:"total_products"`
	RecentProducts []*domain.Product `json:"recent_products"`
}

type AdminService struct {
	products     ProductAdmin
	invalidator  CacheInvalidator
	passwordHash []byte
	logger       *zap.Logger
}

// NewAdminService hashes password once; Authenticate compares against the hash.
// invalidator may be nil when no product cache is configured.
func NewAdminService(products ProductAdmin, invalidator CacheInvalidator, password string, logger *zap.Logger) (*AdminService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminService{
		products:     products,
		invalidator:  invalidator,
		passwordHash: hash,
		logger:       logger,
	}, nil
}

func (s *AdminService) Authenticate(password string) error {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Warn("admin login rejected")
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	total, err := s.products.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	recent, err := s.products.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	return &Dashboard{TotalProducts: total, RecentProducts: recent}, nil
}

func (s *AdminService) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	return s.products.SearchProducts(ctx, query)
}

func (s *AdminService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	s.logger.Info("product updated", zap.Int64("product_id", p.ID))
	return nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *AdminService) invalidate(ctx context.Context, id int64) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id)
	}
}
