package handler

import (
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/altustroy/snab/internal/catalog/repository"
	"github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/testutil"
)

func setupCatalogTest(t *testing.T) *testutil.TestEnv {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewCatalogService(repos, nil, zap.NewNop())
	h := NewHandlers(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	catalog := api.Group("/catalog")
	{
		catalog.GET("/snapshot", h.Catalog.Snapshot)
		catalog.GET("/organizations", h.Catalog.ListOrganizations)
		catalog.POST("/organizations", h.Catalog.CreateOrganization)
		catalog.GET("/projects", h.Catalog.ListProjects)
		catalog.POST("/projects", h.Catalog.CreateProject)
		catalog.GET("/warehouses", h.Catalog.ListWarehouses)
		catalog.POST("/warehouses", h.Catalog.CreateWarehouse)
		catalog.GET("/work-types", h.Catalog.ListWorkTypes)
		catalog.POST("/work-types", h.Catalog.CreateWorkType)
		catalog.GET("/units", h.Catalog.ListUnits)
		catalog.POST("/units", h.Catalog.CreateUnit)
		catalog.GET("/materials", h.Catalog.ListMaterials)
		catalog.POST("/materials", h.Catalog.CreateMaterial)
		catalog.GET("/materials/:id", h.Catalog.GetMaterial)
	}

	return &testutil.TestEnv{DB: db, Router: r, T: t}
}

func createdID(t *testing.T, resp map[string]interface{}) string {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no data object: %v", resp)
	}
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("Created entity has no id: %v", data)
	}
	return id
}

func TestCreateAndListOrganizations(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/catalog/organizations", map[string]interface{}{
		"name":       "ООО «Ромашка»",
		"short_name": "Ромашка",
		"inn":        "7701234567",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create organization returned %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Fatalf("Unexpected response code: %v", resp["code"])
	}
	orgID := createdID(t, resp)

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/organizations", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("List organizations returned %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	orgs, ok := resp["data"].([]interface{})
	if !ok || len(orgs) != 1 {
		t.Fatalf("Expected 1 organization, got %v", resp["data"])
	}
	if orgs[0].(map[string]interface{})["id"] != orgID {
		t.Errorf("Listed organization id mismatch")
	}
}

func TestCreateWarehouseUnderProject(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/catalog/projects", map[string]interface{}{
		"name": "Объект-7",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create project returned %d: %s", w.Code, w.Body.String())
	}
	projectID := createdID(t, testutil.ParseResponse(w))

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/catalog/warehouses", map[string]interface{}{
		"name":       "Основной склад",
		"project_id": projectID,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create warehouse returned %d: %s", w.Code, w.Body.String())
	}

	// missing project_id is a validation error
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/catalog/warehouses", map[string]interface{}{
		"name": "Бесхозный склад",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Warehouse without project returned %d, want 400", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/warehouses?project_id="+projectID, nil, token)
	resp := testutil.ParseResponse(w)
	warehouses, ok := resp["data"].([]interface{})
	if !ok || len(warehouses) != 1 {
		t.Fatalf("Expected 1 warehouse for project, got %v", resp["data"])
	}
}

func TestListMaterialsPagination(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()

	unit := testutil.SeedUnit(t, env.DB, "u-0001", "шт")
	for i := 0; i < 3; i++ {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/catalog/materials", map[string]interface{}{
			"name":    fmt.Sprintf("Кирпич М%d", 100+i*50),
			"unit_id": unit.ID,
		}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("Create material returned %d: %s", w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/materials?page=1&page_size=2", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("List materials returned %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Errorf("Expected 2 materials on first page, got %d", len(items))
	}
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 3 {
		t.Errorf("Expected total 3, got %v", pagination["total"])
	}
	if pagination["total_pages"].(float64) != 2 {
		t.Errorf("Expected 2 pages, got %v", pagination["total_pages"])
	}
}

func TestGetMaterialNotFound(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/materials/nonexistent", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown material, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("Expected code 40400, got %v", resp["code"])
	}
}

func TestSnapshotReflectsCatalog(t *testing.T) {
	env := setupCatalogTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedOrganization(t, env.DB, "o-0001", "ООО «Ромашка»", "Ромашка")
	testutil.SeedUnit(t, env.DB, "u-0001", "шт")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/snapshot", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Snapshot returned %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if orgs := data["organizations"].([]interface{}); len(orgs) != 1 {
		t.Errorf("Expected 1 organization in snapshot, got %d", len(orgs))
	}
	if units := data["units"].([]interface{}); len(units) != 1 {
		t.Errorf("Expected 1 unit in snapshot, got %d", len(units))
	}
}

func TestCatalogRequiresAuth(t *testing.T) {
	env := setupCatalogTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/catalog/snapshot", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}
