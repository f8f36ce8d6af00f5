package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldinspect/internal/inspection"
)

// timestampLayout is fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// ErrDuplicateStage reports a second stage for the same return and inspection type.
var ErrDuplicateStage = errors.New("duplicate inspection stage")

const stageColumns = "id, parent_return_id, inspection_type_id, inspector_id, stage_name, stage_order, required, due_date, decision, submitted_at, comment, inputs_json, recommendation, created_at, updated_at"

func scanStage(scanner interface{ Scan(dest ...any) error }) (*inspection.Stage, error) {
	var (
		id             int64
		parentReturnID int64
		typeID         int64
		inspectorID    sql.NullInt64
		stageName      sql.NullString
		stageOrder     sql.NullInt64
		required       sql.NullInt64
		dueDate        sql.NullString
		decision       sql.NullString
		submittedRaw   sql.NullString
		comment        sql.NullString
		inputsJSON     sql.NullString
		recommendation string
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&id,
		&parentReturnID,
		&typeID,
		&inspectorID,
		&stageName,
		&stageOrder,
		&required,
		&dueDate,
		&decision,
		&submittedRaw,
		&comment,
		&inputsJSON,
		&recommendation,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	stage := &inspection.Stage{
		ID:               id,
		ParentReturnID:   parentReturnID,
		InspectionTypeID: typeID,
		InspectorID:      inspectorID.Int64,
		Recommendation:   inspection.Recommendation(recommendation),
	}
	if stageOrder.Valid {
		stage.Meta = &inspection.StageMeta{
			StageName: stageName.String,
			Order:     int(stageOrder.Int64),
			Required:  required.Int64 != 0,
		}
	}
	if dueDate.Valid {
		if due, ok := inspection.ParseDate(dueDate.String); ok {
			stage.DueDate = &due
		}
	}
	if decision.Valid && decision.String != "" {
		submitted, err := parseTimeString(submittedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("stage %d: submitted_at: %w", id, err)
		}
		stage.State = inspection.Submitted(inspection.Decision(decision.String), submitted)
	}
	if comment.Valid {
		value := comment.String
		stage.Comment = &value
	}
	if inputsJSON.Valid && inputsJSON.String != "" {
		var inputs inspection.Inputs
		if err := json.Unmarshal([]byte(inputsJSON.String), &inputs); err != nil {
			return nil, fmt.Errorf("stage %d: decode inputs: %w", id, err)
		}
		stage.Inputs = inputs
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		stage.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		stage.UpdatedAt = updated
	}
	return stage, nil
}

func encodeInputs(inputs inspection.Inputs) (any, error) {
	if inputs == nil {
		return nil, nil
	}
	data, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableID(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return inspection.FormatDate(value)
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(timestampLayout)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
