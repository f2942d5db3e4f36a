package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/altustroy/snab/internal/catalog/repository"
	"github.com/altustroy/snab/internal/catalog/service"
)

// CatalogHandler exposes the reference catalogs the import engine
// reconciles against.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Snapshot returns every catalog in one response
// GET /api/v1/catalog/snapshot
func (h *CatalogHandler) Snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, snap)
}

// ListOrganizations GET /api/v1/catalog/organizations
func (h *CatalogHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.svc.ListOrganizations(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, orgs)
}

// CreateOrganization POST /api/v1/catalog/organizations
func (h *CatalogHandler) CreateOrganization(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.svc.CreateOrganization(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, org)
}

type createProjectRequest struct {
	Name           string  `json:"name" binding:"required"`
	OrganizationID *string `json:"organization_id"`
}

// ListProjects GET /api/v1/catalog/projects
func (h *CatalogHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, projects)
}

// CreateProject POST /api/v1/catalog/projects
func (h *CatalogHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	project, err := h.svc.CreateProject(c.Request.Context(), GetUserID(c), req.Name, req.OrganizationID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, project)
}

type createWarehouseRequest struct {
	Name      string `json:"name" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
}

// ListWarehouses GET /api/v1/catalog/warehouses?project_id=
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.svc.ListWarehouses(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, warehouses)
}

// CreateWarehouse POST /api/v1/catalog/warehouses
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	var req createWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	warehouse, err := h.svc.CreateWarehouse(c.Request.Context(), GetUserID(c), req.Name, req.ProjectID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, warehouse)
}

type createNamedRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListWorkTypes GET /api/v1/catalog/work-types
func (h *CatalogHandler) ListWorkTypes(c *gin.Context) {
	workTypes, err := h.svc.ListWorkTypes(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, workTypes)
}

// CreateWorkType POST /api/v1/catalog/work-types
func (h *CatalogHandler) CreateWorkType(c *gin.Context) {
	var req createNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	workType, err := h.svc.CreateWorkType(c.Request.Context(), GetUserID(c), req.Name)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, workType)
}

// ListCharacteristics GET /api/v1/catalog/characteristics
func (h *CatalogHandler) ListCharacteristics(c *gin.Context) {
	characteristics, err := h.svc.ListCharacteristics(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, characteristics)
}

// CreateCharacteristic POST /api/v1/catalog/characteristics
func (h *CatalogHandler) CreateCharacteristic(c *gin.Context) {
	var req createNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ch, err := h.svc.CreateCharacteristic(c.Request.Context(), GetUserID(c), req.Name)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, ch)
}

// ListUnits GET /api/v1/catalog/units
func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.svc.ListUnits(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, units)
}

// CreateUnit POST /api/v1/catalog/units
func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var req createNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	unit, err := h.svc.CreateUnit(c.Request.Context(), GetUserID(c), req.Name)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, unit)
}

type createMaterialRequest struct {
	Name   string  `json:"name" binding:"required"`
	UnitID *string `json:"unit_id"`
}

// ListMaterials GET /api/v1/catalog/materials?page=&page_size=&search=
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	page, pageSize := GetPagination(c)
	materials, total, err := h.svc.ListMaterials(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	Success(c, ListResponse{
		Items: materials,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// GetMaterial GET /api/v1/catalog/materials/:id
func (h *CatalogHandler) GetMaterial(c *gin.Context) {
	material, err := h.svc.GetMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "material not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, material)
}

// CreateMaterial POST /api/v1/catalog/materials
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	material, err := h.svc.CreateMaterial(c.Request.Context(), GetUserID(c), req.Name, req.UnitID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, material)
}
