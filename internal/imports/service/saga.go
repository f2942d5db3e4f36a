package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/normalize"
)

// compensation undoes one completed creation step.
type compensation struct {
	name string
	fn   func(context.Context) error
}

// creationSaga creates every entity a confirmed diff names, strictly in
// dependency order. If any step fails, everything already created is
// deleted again in reverse order so the catalog is left untouched.
type creationSaga struct {
	catalog CatalogAPI
	logger  *zap.Logger
	userID  string
}

// Run executes the saga for one diff. Created entities are added to ix so
// the caller can bind line items against the extended catalog afterwards.
func (s *creationSaga) Run(ctx context.Context, diff *entity.ReconciliationDiff, meta entity.HeaderMetadata, orgID *string, ix *catalogIndex) (err error) {
	var undo []compensation
	defer func() {
		if err != nil {
			s.rollback(ctx, undo)
		}
	}()

	var createdProjectID string
	if diff.MissingProject != "" {
		project, cerr := s.catalog.CreateProject(ctx, s.userID, diff.MissingProject, orgID)
		if cerr != nil {
			return fmt.Errorf("create project %q: %w", diff.MissingProject, cerr)
		}
		createdProjectID = project.ID
		ix.projects.add(project.ID, project.Name)
		undo = append(undo, compensation{
			name: "project " + project.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteProject(ctx, project.ID) },
		})
	}

	if diff.MissingWarehouse != "" {
		projectID := createdProjectID
		if projectID == "" {
			if ref := ix.projects.find(meta.ProjectName); ref != nil {
				projectID = ref.ID
			}
		}
		if projectID == "" {
			return fmt.Errorf("warehouse %q: no project to attach it to", diff.MissingWarehouse)
		}
		warehouse, cerr := s.catalog.CreateWarehouse(ctx, s.userID, diff.MissingWarehouse, projectID)
		if cerr != nil {
			return fmt.Errorf("create warehouse %q: %w", diff.MissingWarehouse, cerr)
		}
		ix.warehouses.add(warehouse.ID, warehouse.Name)
		undo = append(undo, compensation{
			name: "warehouse " + warehouse.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteWarehouse(ctx, warehouse.ID) },
		})
	}

	for _, name := range diff.MissingWorkTypes {
		workType, cerr := s.catalog.CreateWorkType(ctx, s.userID, name)
		if cerr != nil {
			return fmt.Errorf("create work type %q: %w", name, cerr)
		}
		ix.workTypes.add(workType.ID, workType.Name)
		id := workType.ID
		undo = append(undo, compensation{
			name: "work type " + workType.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteWorkType(ctx, id) },
		})
	}

	for _, name := range diff.MissingCharacteristics {
		ch, cerr := s.catalog.CreateCharacteristic(ctx, s.userID, name)
		if cerr != nil {
			return fmt.Errorf("create characteristic %q: %w", name, cerr)
		}
		ix.characteristics.add(ch.ID, ch.Name)
		id := ch.ID
		undo = append(undo, compensation{
			name: "characteristic " + ch.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteCharacteristic(ctx, id) },
		})
	}

	createUnit := func(name string) error {
		unit, cerr := s.catalog.CreateUnit(ctx, s.userID, name)
		if cerr != nil {
			return fmt.Errorf("create unit %q: %w", name, cerr)
		}
		ix.units.add(unit.ID, unit.Name)
		id := unit.ID
		undo = append(undo, compensation{
			name: "unit " + unit.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteUnit(ctx, id) },
		})
		return nil
	}

	for _, name := range diff.MissingUnits {
		if err = createUnit(name); err != nil {
			return err
		}
	}
	// Estimate units share the unit catalog, so any spelling already
	// covered by the step above is skipped here.
	for _, name := range diff.MissingEstimateUnits {
		if ix.units.find(name) != nil {
			continue
		}
		if err = createUnit(name); err != nil {
			return err
		}
	}

	for _, name := range diff.MissingMaterials {
		material, cerr := s.catalog.CreateMaterial(ctx, s.userID, name, s.unitIDFor(name, diff, ix))
		if cerr != nil {
			return fmt.Errorf("create material %q: %w", name, cerr)
		}
		ix.materials.add(material.ID, material.Name)
		id := material.ID
		undo = append(undo, compensation{
			name: "material " + material.Name,
			fn:   func(ctx context.Context) error { return s.catalog.DeleteMaterial(ctx, id) },
		})
	}

	return nil
}

// unitIDFor links a new material to the unit its line items use, when the
// saga carries that association.
func (s *creationSaga) unitIDFor(materialName string, diff *entity.ReconciliationDiff, ix *catalogIndex) *string {
	unitName, ok := diff.MaterialUnits[normalize.Generic(materialName)]
	if !ok {
		return nil
	}
	ref := ix.units.find(unitName)
	if ref == nil {
		return nil
	}
	id := ref.ID
	return &id
}

func (s *creationSaga) rollback(ctx context.Context, undo []compensation) {
	for i := len(undo) - 1; i >= 0; i-- {
		if rerr := undo[i].fn(ctx); rerr != nil {
			s.logger.Error("saga rollback step failed",
				zap.String("step", undo[i].name),
				zap.Error(rerr))
		}
	}
}
