package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldinspect/internal/inspection"
)

// CountStages returns how many stage instances exist for a return.
func (tx *Tx) CountStages(ctx context.Context, returnID int64) (int, error) {
	var count int
	if err := tx.q.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM inspection_stages WHERE parent_return_id = ?", returnID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stages: %w", err)
	}
	return count, nil
}

// ListStages returns every stage of a return ordered by inherited order, then
// id. Stages without metadata come last.
func (tx *Tx) ListStages(ctx context.Context, returnID int64) ([]inspection.Stage, error) {
	rows, err := tx.q.QueryContext(ctx,
		"SELECT "+stageColumns+" FROM inspection_stages WHERE parent_return_id = ? ORDER BY stage_order IS NULL, stage_order, id",
		returnID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []inspection.Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, *stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}
	return stages, nil
}

// GetStage loads a stage by id scoped to its return. It returns nil when the
// pair does not match.
func (tx *Tx) GetStage(ctx context.Context, returnID, stageID int64) (*inspection.Stage, error) {
	return tx.queryStage(ctx,
		"SELECT "+stageColumns+" FROM inspection_stages WHERE id = ? AND parent_return_id = ?",
		stageID, returnID,
	)
}

// FindStageByType loads the stage of a return for one inspection type, or nil.
func (tx *Tx) FindStageByType(ctx context.Context, returnID, inspectionTypeID int64) (*inspection.Stage, error) {
	return tx.queryStage(ctx,
		"SELECT "+stageColumns+" FROM inspection_stages WHERE parent_return_id = ? AND inspection_type_id = ?",
		returnID, inspectionTypeID,
	)
}

// LatestSubmitted returns the most recently submitted stage of a return, or nil.
func (tx *Tx) LatestSubmitted(ctx context.Context, returnID int64) (*inspection.Stage, error) {
	return tx.queryStage(ctx,
		"SELECT "+stageColumns+" FROM inspection_stages WHERE parent_return_id = ? AND submitted_at IS NOT NULL ORDER BY submitted_at DESC, id DESC LIMIT 1",
		returnID,
	)
}

func (tx *Tx) queryStage(ctx context.Context, query string, args ...any) (*inspection.Stage, error) {
	stage, err := scanStage(tx.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load stage: %w", err)
	}
	return stage, nil
}

// ClaimChecklist records that a return's checklist is being materialized. It
// reports false when another caller already claimed it.
func (tx *Tx) ClaimChecklist(ctx context.Context, returnID int64, subject string) (bool, error) {
	res, err := tx.q.ExecContext(ctx,
		"INSERT INTO inspection_checklists (parent_return_id, initialized_by, initialized_at) VALUES (?, ?, ?) ON CONFLICT(parent_return_id) DO NOTHING",
		returnID, nullableString(subject), formatTimestamp(tx.now),
	)
	if err != nil {
		return false, fmt.Errorf("claim checklist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim checklist rows affected: %w", err)
	}
	return affected == 1, nil
}

// InsertStage stores a new stage and fills in its id and timestamps.
func (tx *Tx) InsertStage(ctx context.Context, stage *inspection.Stage) error {
	if stage == nil {
		return errors.New("insert stage: nil stage")
	}
	inputs, err := encodeInputs(stage.Inputs)
	if err != nil {
		return err
	}
	var (
		stageName, stageOrder, required any
	)
	if stage.Meta != nil {
		stageName = stage.Meta.StageName
		stageOrder = stage.Meta.Order
		required = boolToInt(stage.Meta.Required)
	}
	decision, submittedAt := stateColumns(stage.State)
	recommendation := stage.Recommendation
	if recommendation == "" {
		recommendation = inspection.RecommendationNone
	}
	now := formatTimestamp(tx.now)

	res, err := tx.q.ExecContext(ctx,
		`INSERT INTO inspection_stages (
			parent_return_id, inspection_type_id, inspector_id, stage_name, stage_order, required,
			due_date, decision, submitted_at, comment, inputs_json, recommendation, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stage.ParentReturnID,
		stage.InspectionTypeID,
		nullableID(stage.InspectorID),
		stageName,
		stageOrder,
		required,
		nullableDate(stage.DueDate),
		decision,
		submittedAt,
		nullableStringPtr(stage.Comment),
		inputs,
		string(recommendation),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: return %d type %d", ErrDuplicateStage, stage.ParentReturnID, stage.InspectionTypeID)
		}
		return fmt.Errorf("insert stage: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert stage id: %w", err)
	}
	stage.ID = id
	stage.Recommendation = recommendation
	stage.CreatedAt = tx.now
	stage.UpdatedAt = tx.now
	return nil
}

// UpdateStage writes the mutable part of a stage: state, comment, inputs, and
// recommendation. Metadata, due date, and inspector are left untouched.
func (tx *Tx) UpdateStage(ctx context.Context, stage *inspection.Stage) error {
	if stage == nil {
		return errors.New("update stage: nil stage")
	}
	inputs, err := encodeInputs(stage.Inputs)
	if err != nil {
		return err
	}
	decision, submittedAt := stateColumns(stage.State)
	res, err := tx.q.ExecContext(ctx,
		`UPDATE inspection_stages
		SET decision = ?, submitted_at = ?, comment = ?, inputs_json = ?, recommendation = ?, updated_at = ?
		WHERE id = ? AND parent_return_id = ?`,
		decision,
		submittedAt,
		nullableStringPtr(stage.Comment),
		inputs,
		string(stage.Recommendation),
		formatTimestamp(tx.now),
		stage.ID,
		stage.ParentReturnID,
	)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stage rows affected: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("update stage %d: %w", stage.ID, sql.ErrNoRows)
	}
	stage.UpdatedAt = tx.now
	return nil
}

func stateColumns(state inspection.State) (any, any) {
	decision, ok := state.Decision()
	if !ok {
		return nil, nil
	}
	at, _ := state.SubmittedAt()
	return string(decision), formatTimestamp(at)
}
