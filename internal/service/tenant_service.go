package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/dto"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// ErrInvalidFeaturePath rejects syntactically malformed override paths
var ErrInvalidFeaturePath = errors.New("invalid feature path")

// TenantService defines the administrative write path for tenants
type TenantService interface {
	// Provision creates a new store
	Provision(ctx context.Context, req *dto.ProvisionTenantRequest) (*dto.TenantResponse, error)
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*dto.TenantResponse, error)
	// SetPlan moves the tenant to another plan, validated against the
	// plan catalog before acceptance
	SetPlan(ctx context.Context, id, planID string) error
	// SetTheme changes the tenant's selected theme; the theme must be
	// registered and granted by the tenant's plan
	SetTheme(ctx context.Context, id, themeID string) error
	// SetFeatureOverride sets one override leaf on the tenant's tree
	SetFeatureOverride(ctx context.Context, id, path string, enabled bool) error
	// ClearFeatureOverride removes one override leaf, restoring
	// inheritance from the plan
	ClearFeatureOverride(ctx context.Context, id, path string) error
}

// tenantService implements TenantService
type tenantService struct {
	tenantRepo repository.TenantRepository
	catalog    PlanCatalog
	log        *logger.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo repository.TenantRepository, catalog PlanCatalog, log *logger.Logger) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		catalog:    catalog,
		log:        log,
	}
}

// Provision creates a new store
func (s *tenantService) Provision(ctx context.Context, req *dto.ProvisionTenantRequest) (*dto.TenantResponse, error) {
	exists, err := s.tenantRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTenantAlreadyExists
	}

	planID := req.PlanID
	if planID == "" {
		planID = domain.FallbackPlanID
	} else if _, err := s.catalog.GetPlan(ctx, planID); err != nil {
		return nil, err
	}

	themeID := req.ThemeID
	if themeID == "" {
		themeID = domain.DefaultThemeID
	} else if _, ok := domain.ThemeByID(themeID); !ok {
		return nil, ErrUnknownTheme
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Slug:             req.Slug,
		PlanID:           planID,
		ThemeID:          themeID,
		CustomDomain:     req.CustomDomain,
		FeatureOverrides: make(map[string]bool),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.log.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug),
		zap.String("plan_id", tenant.PlanID))
	return dto.NewTenantResponse(tenant), nil
}

// GetByID retrieves a tenant by ID
func (s *tenantService) GetByID(ctx context.Context, id string) (*dto.TenantResponse, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return dto.NewTenantResponse(tenant), nil
}

// SetPlan moves the tenant to another plan
func (s *tenantService) SetPlan(ctx context.Context, id, planID string) error {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}

	if _, err := s.catalog.GetPlan(ctx, planID); err != nil {
		return err
	}

	if err := s.tenantRepo.SetPlan(ctx, id, planID); err != nil {
		return err
	}

	s.log.Info("tenant plan changed",
		zap.String("tenant_id", id),
		zap.String("plan_id", planID))
	return nil
}

// SetTheme changes the tenant's selected theme
func (s *tenantService) SetTheme(ctx context.Context, id, themeID string) error {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}

	if _, ok := domain.ThemeByID(themeID); !ok {
		return ErrUnknownTheme
	}
	if !s.catalog.EffectivePlan(ctx, tenant).AllowsTheme(themeID) {
		return ErrThemeNotAllowed
	}

	return s.tenantRepo.SetTheme(ctx, id, themeID)
}

// SetFeatureOverride sets one override leaf on the tenant's tree
func (s *tenantService) SetFeatureOverride(ctx context.Context, id, path string, enabled bool) error {
	if err := domain.ValidateFeaturePath(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeaturePath, err)
	}
	if !domain.IsKnownFeaturePath(path) {
		// Accepted: overrides may predate a registry entry. The leaf
		// still participates in the merge.
		s.log.Debug("override on unregistered feature path",
			zap.String("tenant_id", id),
			zap.String("path", path))
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}

	if err := s.tenantRepo.SetFeatureOverride(ctx, id, path, &enabled); err != nil {
		return err
	}

	s.log.Info("feature override set",
		zap.String("tenant_id", id),
		zap.String("path", path),
		zap.Bool("enabled", enabled))
	return nil
}

// ClearFeatureOverride removes one override leaf
func (s *tenantService) ClearFeatureOverride(ctx context.Context, id, path string) error {
	if err := domain.ValidateFeaturePath(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeaturePath, err)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}

	return s.tenantRepo.SetFeatureOverride(ctx, id, path, nil)
}
