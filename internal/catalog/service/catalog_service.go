package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/altustroy/snab/internal/catalog/entity"
	"github.com/altustroy/snab/internal/catalog/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	snapshotCacheKey = "catalog:snapshot"
	snapshotCacheTTL = 30 * time.Second
)

// Snapshot is a point-in-time copy of every reference catalog. The import
// engine diffs against one snapshot; concurrent catalog changes are only
// seen on the next build.
type Snapshot struct {
	Organizations   []entity.Organization   `json:"organizations"`
	Projects        []entity.Project        `json:"projects"`
	Warehouses      []entity.Warehouse      `json:"warehouses"`
	WorkTypes       []entity.WorkType       `json:"work_types"`
	Characteristics []entity.Characteristic `json:"characteristics"`
	Units           []entity.Unit           `json:"units"`
	Materials       []entity.Material       `json:"materials"`
}

// CatalogService reads and creates reference catalog entities.
type CatalogService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCatalogService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{repos: repos, rdb: rdb, logger: logger}
}

// Snapshot loads all catalogs, through the redis cache when available.
func (s *CatalogService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, snapshotCacheKey).Bytes(); err == nil {
			var snap Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				return &snap, nil
			}
		}
	}

	var snap Snapshot
	var err error
	if snap.Organizations, err = s.repos.Organization.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.Projects, err = s.repos.Project.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.Warehouses, err = s.repos.Warehouse.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.WorkTypes, err = s.repos.WorkType.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.Characteristics, err = s.repos.Characteristic.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.Units, err = s.repos.Unit.FindAll(ctx); err != nil {
		return nil, err
	}
	if snap.Materials, err = s.repos.Material.FindAll(ctx); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(&snap); err == nil {
			if err := s.rdb.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache catalog snapshot", zap.Error(err))
			}
		}
	}

	return &snap, nil
}

// invalidateSnapshot drops the cached snapshot after any catalog write.
func (s *CatalogService) invalidateSnapshot(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, snapshotCacheKey).Err(); err != nil {
		s.logger.Warn("Failed to invalidate catalog snapshot cache", zap.Error(err))
	}
}

// CreateOrganizationRequest carries a new customer legal entity.
type CreateOrganizationRequest struct {
	Name      string `json:"name" binding:"required"`
	ShortName string `json:"short_name"`
	LegalName string `json:"legal_name"`
	INN       string `json:"inn"`
	KPP       string `json:"kpp"`
	Address   string `json:"address"`
}

func (s *CatalogService) CreateOrganization(ctx context.Context, userID string, req *CreateOrganizationRequest) (*entity.Organization, error) {
	org := &entity.Organization{
		ID:        uuid.New().String()[:32],
		Name:      req.Name,
		ShortName: req.ShortName,
		LegalName: req.LegalName,
		INN:       req.INN,
		KPP:       req.KPP,
		Address:   req.Address,
		CreatedBy: userID,
	}
	if err := s.repos.Organization.Create(ctx, org); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return org, nil
}

func (s *CatalogService) ListOrganizations(ctx context.Context) ([]entity.Organization, error) {
	return s.repos.Organization.FindAll(ctx)
}

func (s *CatalogService) CreateProject(ctx context.Context, userID, name string, organizationID *string) (*entity.Project, error) {
	p := &entity.Project{
		ID:             uuid.New().String()[:32],
		Name:           name,
		OrganizationID: organizationID,
		Status:         entity.ProjectStatusActive,
		CreatedBy:      userID,
	}
	if err := s.repos.Project.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProject(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.Project.Delete(ctx, id)
}

func (s *CatalogService) ListProjects(ctx context.Context) ([]entity.Project, error) {
	return s.repos.Project.FindAll(ctx)
}

func (s *CatalogService) CreateWarehouse(ctx context.Context, userID, name, projectID string) (*entity.Warehouse, error) {
	w := &entity.Warehouse{
		ID:        uuid.New().String()[:32],
		Name:      name,
		ProjectID: projectID,
		CreatedBy: userID,
	}
	if err := s.repos.Warehouse.Create(ctx, w); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return w, nil
}

func (s *CatalogService) DeleteWarehouse(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.Warehouse.Delete(ctx, id)
}

func (s *CatalogService) ListWarehouses(ctx context.Context, projectID string) ([]entity.Warehouse, error) {
	if projectID != "" {
		return s.repos.Warehouse.FindByProject(ctx, projectID)
	}
	return s.repos.Warehouse.FindAll(ctx)
}

func (s *CatalogService) CreateWorkType(ctx context.Context, userID, name string) (*entity.WorkType, error) {
	wt := &entity.WorkType{
		ID:        uuid.New().String()[:32],
		Name:      name,
		CreatedBy: userID,
	}
	if err := s.repos.WorkType.Create(ctx, wt); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return wt, nil
}

func (s *CatalogService) DeleteWorkType(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.WorkType.Delete(ctx, id)
}

func (s *CatalogService) ListWorkTypes(ctx context.Context) ([]entity.WorkType, error) {
	return s.repos.WorkType.FindAll(ctx)
}

func (s *CatalogService) CreateCharacteristic(ctx context.Context, userID, name string) (*entity.Characteristic, error) {
	ch := &entity.Characteristic{
		ID:        uuid.New().String()[:32],
		Name:      name,
		CreatedBy: userID,
	}
	if err := s.repos.Characteristic.Create(ctx, ch); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return ch, nil
}

func (s *CatalogService) DeleteCharacteristic(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.Characteristic.Delete(ctx, id)
}

func (s *CatalogService) ListCharacteristics(ctx context.Context) ([]entity.Characteristic, error) {
	return s.repos.Characteristic.FindAll(ctx)
}

func (s *CatalogService) CreateUnit(ctx context.Context, userID, name string) (*entity.Unit, error) {
	u := &entity.Unit{
		ID:        uuid.New().String()[:32],
		Name:      name,
		CreatedBy: userID,
	}
	if err := s.repos.Unit.Create(ctx, u); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return u, nil
}

func (s *CatalogService) DeleteUnit(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.Unit.Delete(ctx, id)
}

func (s *CatalogService) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	return s.repos.Unit.FindAll(ctx)
}

func (s *CatalogService) CreateMaterial(ctx context.Context, userID, name string, unitID *string) (*entity.Material, error) {
	m := &entity.Material{
		ID:        uuid.New().String()[:32],
		Name:      name,
		UnitID:    unitID,
		CreatedBy: userID,
	}
	if err := s.repos.Material.Create(ctx, m); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx)
	return m, nil
}

func (s *CatalogService) DeleteMaterial(ctx context.Context, id string) error {
	defer s.invalidateSnapshot(ctx)
	return s.repos.Material.Delete(ctx, id)
}

func (s *CatalogService) ListMaterials(ctx context.Context, page, pageSize int, search string) ([]entity.Material, int64, error) {
	return s.repos.Material.List(ctx, page, pageSize, search)
}

func (s *CatalogService) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	return s.repos.Material.FindByID(ctx, id)
}
