package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catentity "github.com/altustroy/snab/internal/catalog/entity"
	catservice "github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/sheet"
)

// CatalogAPI is the slice of the catalog service the import engine needs:
// one snapshot read plus creation and compensating deletion per entity type.
type CatalogAPI interface {
	Snapshot(ctx context.Context) (*catservice.Snapshot, error)
	CreateProject(ctx context.Context, userID, name string, organizationID *string) (*catentity.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateWarehouse(ctx context.Context, userID, name, projectID string) (*catentity.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
	CreateWorkType(ctx context.Context, userID, name string) (*catentity.WorkType, error)
	DeleteWorkType(ctx context.Context, id string) error
	CreateCharacteristic(ctx context.Context, userID, name string) (*catentity.Characteristic, error)
	DeleteCharacteristic(ctx context.Context, id string) error
	CreateUnit(ctx context.Context, userID, name string) (*catentity.Unit, error)
	DeleteUnit(ctx context.Context, id string) error
	CreateMaterial(ctx context.Context, userID, name string, unitID *string) (*catentity.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
}

// MappingStore persists per-user column mapping overrides.
type MappingStore interface {
	Find(ctx context.Context, userID, tenantID string) (*entity.ColumnMappingRecord, error)
	Save(ctx context.Context, userID, tenantID string, mapping entity.ColumnMapping) error
}

// Archiver keeps a copy of every uploaded workbook.
type Archiver interface {
	Archive(ctx context.Context, name string, r io.Reader, size int64) error
}

// Notifier pushes session changes to connected watchers.
type Notifier interface {
	SessionUpdated(sess *entity.ImportSession)
}

// ImportService drives the whole import lifecycle: parse, reconcile,
// suspend on an unknown organization, confirm with compensated creation,
// and final reference binding.
type ImportService struct {
	store    *SessionStore
	catalog  CatalogAPI
	mappings MappingStore
	archiver Archiver // optional
	notifier Notifier // optional
	logger   *zap.Logger
}

func NewImportService(store *SessionStore, catalog CatalogAPI, mappings MappingStore, logger *zap.Logger) *ImportService {
	return &ImportService{
		store:    store,
		catalog:  catalog,
		mappings: mappings,
		logger:   logger,
	}
}

// WithArchiver enables best-effort upload archival.
func (s *ImportService) WithArchiver(a Archiver) *ImportService {
	s.archiver = a
	return s
}

// WithNotifier enables session change broadcasts.
func (s *ImportService) WithNotifier(n Notifier) *ImportService {
	s.notifier = n
	return s
}

// Upload parses one workbook and opens a session for it. When the document
// organization has no catalog match the session is stored suspended and a
// MissingOrganizationError is returned alongside it; the caller resumes
// after creating the organization.
func (s *ImportService) Upload(ctx context.Context, userID, tenantID, fileName string, r io.Reader) (*entity.ImportSession, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	grid, err := sheet.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	meta := sheet.LocateMetadata(grid)
	headerRow, err := sheet.LocateHeaderRow(grid)
	if err != nil {
		return nil, err
	}

	var persisted entity.ColumnMapping
	if rec, merr := s.mappings.Find(ctx, userID, tenantID); merr != nil {
		// a broken mapping record never blocks the import
		s.logger.Warn("load column mapping failed", zap.String("user_id", userID), zap.Error(merr))
	} else if rec != nil {
		persisted = rec.Mapping
	}

	mapping := sheet.ResolveColumns(grid.Row(headerRow), persisted)
	items := sheet.ExtractRows(grid, headerRow, mapping, meta)

	sess := &entity.ImportSession{
		ID:        uuid.New().String()[:32],
		UserID:    userID,
		TenantID:  tenantID,
		FileName:  fileName,
		State:     entity.SessionParsed,
		Metadata:  meta,
		Mapping:   mapping,
		Items:     items,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	s.archive(ctx, fileName, raw)

	// the clone is taken before Put shares the session with the bridge
	if err := s.reconcile(ctx, sess); err != nil {
		view := sess.Clone()
		s.store.Put(sess)
		return view, err
	}
	view := sess.Clone()
	s.store.Put(sess)
	s.notify(view)
	return view, nil
}

// reconcile matches the organization and computes the diff, moving the
// session to DiffReady or Suspended.
func (s *ImportService) reconcile(ctx context.Context, sess *entity.ImportSession) error {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("catalog snapshot: %w", err)
	}

	org := MatchOrganization(sess.Metadata.OrganizationName, snap.Organizations)
	if org == nil {
		sess.State = entity.SessionSuspended
		sess.Organization = nil
		sess.UpdatedAt = time.Now()
		return &MissingOrganizationError{Name: sess.Metadata.OrganizationName}
	}

	sess.Organization = &entity.EntityRef{ID: org.ID, Name: org.Name}
	sess.Diff = BuildDiff(sess.Items, sess.Metadata, snap)
	sess.State = entity.SessionDiffReady
	sess.UpdatedAt = time.Now()
	return nil
}

// Resume retries reconciliation for a suspended session, typically after
// the missing organization has been created.
func (s *ImportService) Resume(ctx context.Context, id string) (*entity.ImportSession, error) {
	sess, ok := s.store.View(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.State != entity.SessionSuspended {
		return nil, fmt.Errorf("%w: resume from %s", ErrBadState, sess.State)
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	org := MatchOrganization(sess.Metadata.OrganizationName, snap.Organizations)
	if org == nil {
		return sess, &MissingOrganizationError{Name: sess.Metadata.OrganizationName}
	}

	diff := BuildDiff(sess.Items, sess.Metadata, snap)
	var out *entity.ImportSession
	err = s.store.Update(id, func(sess *entity.ImportSession) error {
		sess.Organization = &entity.EntityRef{ID: org.ID, Name: org.Name}
		sess.Diff = diff
		sess.State = entity.SessionDiffReady
		out = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(out)
	return out, nil
}

// Confirm creates every entity the diff names and binds all line items to
// catalog references. The diff is recomputed against a fresh snapshot first
// so entities created since, through the bridge or by other users, are not
// created twice. Creation failures roll back whatever the run created and
// return the session to DiffReady.
func (s *ImportService) Confirm(ctx context.Context, id string) (*entity.ImportSession, error) {
	var userID string
	var orgID *string
	err := s.store.Update(id, func(sess *entity.ImportSession) error {
		if sess.State != entity.SessionDiffReady {
			return fmt.Errorf("%w: confirm from %s", ErrBadState, sess.State)
		}
		sess.State = entity.SessionConfirming
		userID = sess.UserID
		if sess.Organization != nil {
			oid := sess.Organization.ID
			orgID = &oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.revertToDiffReady(id)
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	// a view so the diff is computed from rows the bridge cannot rewrite
	// mid-walk
	sess, ok := s.store.View(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	diff := BuildDiff(sess.Items, sess.Metadata, snap)
	ix := indexSnapshot(snap)

	if uerr := s.store.Update(id, func(sess *entity.ImportSession) error {
		sess.State = entity.SessionCreating
		sess.Diff = diff
		return nil
	}); uerr != nil {
		return nil, uerr
	}

	saga := &creationSaga{catalog: s.catalog, logger: s.logger, userID: userID}
	if serr := saga.Run(ctx, diff, sess.Metadata, orgID, ix); serr != nil {
		s.logger.Error("entity creation failed, rolled back",
			zap.String("session_id", id), zap.Error(serr))
		s.revertToDiffReady(id)
		return nil, serr
	}

	var out *entity.ImportSession
	err = s.store.Update(id, func(sess *entity.ImportSession) error {
		sess.Items = BindItems(sess.Items, sess.Organization, ix)
		sess.State = entity.SessionCommitted
		out = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(out)
	return out, nil
}

func (s *ImportService) revertToDiffReady(id string) {
	if err := s.store.Update(id, func(sess *entity.ImportSession) error {
		sess.State = entity.SessionDiffReady
		return nil
	}); err != nil {
		s.logger.Warn("session state revert failed", zap.String("session_id", id), zap.Error(err))
	}
}

// Cancel abandons a session. Allowed any time before creation starts;
// the session stays in the store until TTL so its id remains resolvable.
func (s *ImportService) Cancel(ctx context.Context, id string) (*entity.ImportSession, error) {
	var out *entity.ImportSession
	err := s.store.Update(id, func(sess *entity.ImportSession) error {
		if !sess.CanCancel() {
			return fmt.Errorf("%w: cancel from %s", ErrBadState, sess.State)
		}
		sess.State = entity.SessionCancelled
		out = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(out)
	return out, nil
}

// GetSession returns a copy of the session; the live record stays behind
// the store lock.
func (s *ImportService) GetSession(id string) (*entity.ImportSession, error) {
	sess, ok := s.store.View(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// LoadMapping returns the user's persisted column mapping, nil when none
// has been saved yet.
func (s *ImportService) LoadMapping(ctx context.Context, userID, tenantID string) (entity.ColumnMapping, error) {
	rec, err := s.mappings.Find(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Mapping, nil
}

// SaveMapping replaces the user's persisted column mapping wholesale.
func (s *ImportService) SaveMapping(ctx context.Context, userID, tenantID string, mapping entity.ColumnMapping) error {
	for field := range mapping {
		if !validField(field) {
			return fmt.Errorf("unknown mapping field %q", field)
		}
	}
	return s.mappings.Save(ctx, userID, tenantID, mapping)
}

func validField(f entity.Field) bool {
	for _, known := range entity.AllFields {
		if f == known {
			return true
		}
	}
	return false
}

func (s *ImportService) archive(ctx context.Context, name string, raw []byte) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, name, bytes.NewReader(raw), int64(len(raw))); err != nil {
		s.logger.Warn("upload archive failed", zap.String("file", name), zap.Error(err))
	}
}

func (s *ImportService) notify(sess *entity.ImportSession) {
	if s.notifier != nil && sess != nil {
		s.notifier.SessionUpdated(sess)
	}
}
