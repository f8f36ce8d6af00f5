package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldinspect/internal/inspection"
)

// Crop is a crop with its configured template count.
type Crop struct {
	ID            int64
	Name          string
	TemplateCount int
}

// ImportCrop upserts a crop and its stage templates in one transaction.
// Templates are matched by stage name; matches are updated in place so
// existing stage instances keep pointing at the same inspection type.
// It returns the templates as stored, in stage order.
func (s *Store) ImportCrop(ctx context.Context, crop Crop, templates []inspection.StageTemplate) ([]inspection.StageTemplate, error) {
	crop.Name = strings.TrimSpace(crop.Name)
	if crop.ID <= 0 || crop.Name == "" {
		return nil, errors.New("import crop: id and name are required")
	}
	err := s.Update(ctx, func(tx *Tx) error {
		now := formatTimestamp(tx.now)
		if _, err := tx.q.ExecContext(ctx,
			"INSERT INTO crops (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
			crop.ID, crop.Name, now,
		); err != nil {
			return fmt.Errorf("upsert crop %d: %w", crop.ID, err)
		}
		for _, tpl := range templates {
			name := strings.TrimSpace(tpl.StageName)
			if name == "" {
				return fmt.Errorf("import crop %d: stage name is required", crop.ID)
			}
			res, err := tx.q.ExecContext(ctx,
				`UPDATE crop_stage_templates SET stage_order = ?, required = ?, period_after_planting_days = ?
				WHERE crop_id = ? AND stage_name = ?`,
				tpl.Order, boolToInt(tpl.Required), nullableInt(tpl.PeriodAfterPlantingDays), crop.ID, name,
			)
			if err != nil {
				return fmt.Errorf("update template %q: %w", name, err)
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				continue
			}
			if _, err := tx.q.ExecContext(ctx,
				`INSERT INTO crop_stage_templates (crop_id, stage_name, stage_order, required, period_after_planting_days, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				crop.ID, name, tpl.Order, boolToInt(tpl.Required), nullableInt(tpl.PeriodAfterPlantingDays), now,
			); err != nil {
				return fmt.Errorf("insert template %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.StageTemplates(ctx, crop.ID)
}

// StageTemplates returns a crop's templates ordered by stage order, ties
// broken by insertion sequence.
func (s *Store) StageTemplates(ctx context.Context, cropID int64) ([]inspection.StageTemplate, error) {
	var templates []inspection.StageTemplate
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		templates, err = tx.StageTemplates(ctx, cropID)
		return err
	})
	return templates, err
}

// StageTemplates is the transaction-scoped variant of Store.StageTemplates.
func (tx *Tx) StageTemplates(ctx context.Context, cropID int64) ([]inspection.StageTemplate, error) {
	rows, err := tx.q.QueryContext(ctx,
		`SELECT id, crop_id, stage_name, stage_order, required, period_after_planting_days
		FROM crop_stage_templates WHERE crop_id = ? ORDER BY stage_order, id`,
		cropID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []inspection.StageTemplate
	for rows.Next() {
		var (
			tpl      inspection.StageTemplate
			required int
			period   *int
		)
		if err := rows.Scan(&tpl.ID, &tpl.CropID, &tpl.StageName, &tpl.Order, &required, &period); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		tpl.Required = required != 0
		tpl.PeriodAfterPlantingDays = period
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// ListCrops returns every configured crop ordered by id.
func (s *Store) ListCrops(ctx context.Context) ([]Crop, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(t.id)
		FROM crops c LEFT JOIN crop_stage_templates t ON t.crop_id = c.id
		GROUP BY c.id, c.name ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}
	defer rows.Close()

	var crops []Crop
	for rows.Next() {
		var crop Crop
		if err := rows.Scan(&crop.ID, &crop.Name, &crop.TemplateCount); err != nil {
			return nil, fmt.Errorf("scan crop: %w", err)
		}
		crops = append(crops, crop)
	}
	return crops, rows.Err()
}
