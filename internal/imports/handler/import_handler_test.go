package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	catentity "github.com/altustroy/snab/internal/catalog/entity"
	catservice "github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/imports/bridge"
	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/service"
	"github.com/altustroy/snab/internal/testutil"
)

// stubCatalog is an in-memory CatalogAPI for handler tests. Creations land
// in the snapshot immediately, deletions are no-ops.
type stubCatalog struct {
	snap   catservice.Snapshot
	nextID int
}

func (f *stubCatalog) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *stubCatalog) Snapshot(ctx context.Context) (*catservice.Snapshot, error) {
	snap := f.snap
	return &snap, nil
}

func (f *stubCatalog) CreateProject(ctx context.Context, userID, name string, organizationID *string) (*catentity.Project, error) {
	p := catentity.Project{ID: f.id(), Name: name, OrganizationID: organizationID}
	f.snap.Projects = append(f.snap.Projects, p)
	return &p, nil
}

func (f *stubCatalog) DeleteProject(ctx context.Context, id string) error { return nil }

func (f *stubCatalog) CreateWarehouse(ctx context.Context, userID, name, projectID string) (*catentity.Warehouse, error) {
	w := catentity.Warehouse{ID: f.id(), Name: name, ProjectID: projectID}
	f.snap.Warehouses = append(f.snap.Warehouses, w)
	return &w, nil
}

func (f *stubCatalog) DeleteWarehouse(ctx context.Context, id string) error { return nil }

func (f *stubCatalog) CreateWorkType(ctx context.Context, userID, name string) (*catentity.WorkType, error) {
	wt := catentity.WorkType{ID: f.id(), Name: name}
	f.snap.WorkTypes = append(f.snap.WorkTypes, wt)
	return &wt, nil
}

func (f *stubCatalog) DeleteWorkType(ctx context.Context, id string) error { return nil }

func (f *stubCatalog) CreateCharacteristic(ctx context.Context, userID, name string) (*catentity.Characteristic, error) {
	ch := catentity.Characteristic{ID: f.id(), Name: name}
	f.snap.Characteristics = append(f.snap.Characteristics, ch)
	return &ch, nil
}

func (f *stubCatalog) DeleteCharacteristic(ctx context.Context, id string) error { return nil }

func (f *stubCatalog) CreateUnit(ctx context.Context, userID, name string) (*catentity.Unit, error) {
	u := catentity.Unit{ID: f.id(), Name: name}
	f.snap.Units = append(f.snap.Units, u)
	return &u, nil
}

func (f *stubCatalog) DeleteUnit(ctx context.Context, id string) error { return nil }

func (f *stubCatalog) CreateMaterial(ctx context.Context, userID, name string, unitID *string) (*catentity.Material, error) {
	m := catentity.Material{ID: f.id(), Name: name, UnitID: unitID}
	f.snap.Materials = append(f.snap.Materials, m)
	return &m, nil
}

func (f *stubCatalog) DeleteMaterial(ctx context.Context, id string) error { return nil }

type stubMappings struct {
	rec *entity.ColumnMappingRecord
}

func (f *stubMappings) Find(ctx context.Context, userID, tenantID string) (*entity.ColumnMappingRecord, error) {
	return f.rec, nil
}

func (f *stubMappings) Save(ctx context.Context, userID, tenantID string, mapping entity.ColumnMapping) error {
	f.rec = &entity.ColumnMappingRecord{UserID: userID, TenantID: tenantID, Mapping: mapping}
	return nil
}

func setupImportTest(t *testing.T, catalog *stubCatalog) *testutil.TestEnv {
	t.Helper()
	store := service.NewSessionStore(time.Hour)
	t.Cleanup(store.Close)
	svc := service.NewImportService(store, catalog, &stubMappings{}, zap.NewNop())
	hub := bridge.NewHub(svc.ApplyBridgeMessage, zap.NewNop())
	svc.WithNotifier(hub)
	h := NewHandlers(svc, hub, 16<<20)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	imports := api.Group("/imports")
	{
		imports.POST("", h.Import.Upload)
		imports.GET("/mapping", h.Import.GetMapping)
		imports.PUT("/mapping", h.Import.PutMapping)
		imports.POST("/events", h.Import.PostEvent)
		imports.GET("/:id", h.Import.Get)
		imports.POST("/:id/resume", h.Import.Resume)
		imports.POST("/:id/confirm", h.Import.Confirm)
		imports.POST("/:id/cancel", h.Import.Cancel)
		imports.GET("/:id/ws", h.Import.Watch)
	}

	return &testutil.TestEnv{Router: r, T: t}
}

// requestWorkbook builds an xlsx with the standard metadata block, header
// row and the given item rows.
func requestWorkbook(t *testing.T, org string, items [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Организация:", org, "Заявитель:", "Иванов И.И."},
		{"Проект:", "Объект-7", "Склад:", "Основной"},
		{"№", "Наименование материала, услуги по заявке", "Кол-во", "Ед. изм.", "Вид работ", "Поставить к дате"},
	}
	rows = append(rows, items...)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sessionData(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no session data: %v", resp)
	}
	return data
}

func TestUploadCreatesSession(t *testing.T) {
	catalog := &stubCatalog{snap: catservice.Snapshot{
		Organizations: []catentity.Organization{{ID: "o1", Name: "ООО Ромашка"}},
	}}
	env := setupImportTest(t, catalog)
	token := testutil.DefaultTestToken()

	content := requestWorkbook(t, "ООО Ромашка", [][]interface{}{
		{1, "Кирпич М150", 100, "шт", "Кладка", "01.02.25"},
	})
	w := testutil.DoUpload(env.Router, "/api/v1/imports", "file", "заявка.xlsx", content, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Upload returned %d: %s", w.Code, w.Body.String())
	}
	sess := sessionData(t, testutil.ParseResponse(w))
	if sess["state"] != "diff_ready" {
		t.Errorf("Expected diff_ready, got %v", sess["state"])
	}
	if sess["id"] == "" {
		t.Errorf("Session has no id")
	}
	if sess["organization"].(map[string]interface{})["id"] != "o1" {
		t.Errorf("Organization not matched: %v", sess["organization"])
	}
}

func TestUploadRejectsNonWorkbook(t *testing.T) {
	env := setupImportTest(t, &stubCatalog{})
	token := testutil.DefaultTestToken()

	w := testutil.DoUpload(env.Router, "/api/v1/imports", "file", "заявка.txt", []byte("not a workbook"), token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for txt upload, got %d", w.Code)
	}
}

func TestUploadSuspendedThenResume(t *testing.T) {
	catalog := &stubCatalog{}
	env := setupImportTest(t, catalog)
	token := testutil.DefaultTestToken()

	content := requestWorkbook(t, "ООО Ромашка", [][]interface{}{
		{1, "Кирпич М150", 100, "шт", "Кладка", "01.02.25"},
	})
	w := testutil.DoUpload(env.Router, "/api/v1/imports", "file", "заявка.xlsx", content, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for unknown organization, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40901 {
		t.Errorf("Expected code 40901, got %v", resp["code"])
	}
	sess := sessionData(t, resp)
	if sess["state"] != "suspended" {
		t.Fatalf("Expected suspended session in error payload, got %v", sess["state"])
	}
	id := sess["id"].(string)

	// resuming before the organization exists keeps the conflict
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/"+id+"/resume", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on premature resume, got %d", w.Code)
	}

	catalog.snap.Organizations = append(catalog.snap.Organizations,
		catentity.Organization{ID: "o1", Name: "ООО «Ромашка»"})

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/"+id+"/resume", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Resume returned %d: %s", w.Code, w.Body.String())
	}
	sess = sessionData(t, testutil.ParseResponse(w))
	if sess["state"] != "diff_ready" {
		t.Errorf("Expected diff_ready after resume, got %v", sess["state"])
	}
}

func TestConfirmCommitsOnce(t *testing.T) {
	catalog := &stubCatalog{snap: catservice.Snapshot{
		Organizations: []catentity.Organization{{ID: "o1", Name: "ООО Ромашка"}},
	}}
	env := setupImportTest(t, catalog)
	token := testutil.DefaultTestToken()

	content := requestWorkbook(t, "ООО Ромашка", [][]interface{}{
		{1, "Кирпич М150", 100, "шт", "Кладка", "01.02.25"},
	})
	w := testutil.DoUpload(env.Router, "/api/v1/imports", "file", "заявка.xlsx", content, token)
	id := sessionData(t, testutil.ParseResponse(w))["id"].(string)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/"+id+"/confirm", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Confirm returned %d: %s", w.Code, w.Body.String())
	}
	sess := sessionData(t, testutil.ParseResponse(w))
	if sess["state"] != "committed" {
		t.Fatalf("Expected committed, got %v", sess["state"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/"+id+"/confirm", nil, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Second confirm returned %d, want 409", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/unknown/confirm", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Confirm of unknown session returned %d, want 404", w.Code)
	}
}

func TestMappingRoundTrip(t *testing.T) {
	env := setupImportTest(t, &stubCatalog{})
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/imports/mapping", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("GetMapping returned %d", w.Code)
	}
	if data := sessionData(t, testutil.ParseResponse(w)); data["mapping"] != nil {
		t.Errorf("Expected nil mapping before save, got %v", data["mapping"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/imports/mapping", map[string]interface{}{
		"mapping": map[string]int{"quantity": 2, "note": -1},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("PutMapping returned %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/imports/mapping", map[string]interface{}{
		"mapping": map[string]int{"bogus": 1},
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("PutMapping with unknown field returned %d, want 400", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/imports/mapping", nil, token)
	data := sessionData(t, testutil.ParseResponse(w))
	mapping, ok := data["mapping"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected saved mapping, got %v", data["mapping"])
	}
	if mapping["quantity"].(float64) != 2 {
		t.Errorf("Mapping quantity = %v", mapping["quantity"])
	}
}

func TestPostEventResolvesMaterial(t *testing.T) {
	catalog := &stubCatalog{snap: catservice.Snapshot{
		Organizations: []catentity.Organization{{ID: "o1", Name: "ООО Ромашка"}},
	}}
	env := setupImportTest(t, catalog)
	token := testutil.DefaultTestToken()

	content := requestWorkbook(t, "ООО Ромашка", [][]interface{}{
		{1, "Кирпич М150", 100, "шт", "Кладка", "01.02.25"},
	})
	w := testutil.DoUpload(env.Router, "/api/v1/imports", "file", "заявка.xlsx", content, token)
	id := sessionData(t, testutil.ParseResponse(w))["id"].(string)

	// another user created the material while the diff was open
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/events", map[string]interface{}{
		"type":    "materialCreated",
		"payload": map[string]string{"id": "m1", "name": "Кирпич М150", "unit": "шт"},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("PostEvent returned %d: %s", w.Code, w.Body.String())
	}
	if data := sessionData(t, testutil.ParseResponse(w)); data["applied"] != true {
		t.Fatalf("Expected event to apply, got %v", data["applied"])
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/imports/"+id, nil, token)
	sess := sessionData(t, testutil.ParseResponse(w))
	items := sess["items"].([]interface{})
	ref := items[0].(map[string]interface{})["material_ref"]
	if ref == nil || ref.(map[string]interface{})["id"] != "m1" {
		t.Errorf("Material not resolved by event: %v", ref)
	}

	// unrelated events do not apply
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/imports/events", map[string]interface{}{
		"type": "ping",
	}, token)
	if data := sessionData(t, testutil.ParseResponse(w)); data["applied"] != false {
		t.Errorf("Expected ping to be ignored, got %v", data["applied"])
	}
}

func TestWatchUnknownSession(t *testing.T) {
	env := setupImportTest(t, &stubCatalog{})
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/imports/unknown/ws", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown session watch, got %d", w.Code)
	}
}
