package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fieldinspect/internal/inspection"
)

// ReturnRecord is a planting return as mirrored from the parent workflow.
// DateSown keeps the raw text supplied by the parent; it is parsed on read.
type ReturnRecord struct {
	ID          int64
	CropID      int64
	InspectorID int64
	DateSown    string
}

// UpsertReturn inserts or refreshes a return snapshot.
func (s *Store) UpsertReturn(ctx context.Context, rec ReturnRecord) error {
	if rec.ID <= 0 {
		return errors.New("upsert return: id must be positive")
	}
	if rec.CropID <= 0 {
		return errors.New("upsert return: crop id must be positive")
	}
	now := formatTimestamp(s.now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO returns (id, crop_id, inspector_id, date_sown, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			crop_id = excluded.crop_id,
			inspector_id = excluded.inspector_id,
			date_sown = excluded.date_sown,
			updated_at = excluded.updated_at`,
		rec.ID, rec.CropID, nullableID(rec.InspectorID), nullableString(strings.TrimSpace(rec.DateSown)), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert return %d: %w", rec.ID, err)
	}
	return nil
}

// ReturnCore loads the snapshot the engine needs. A missing return yields
// (nil, nil); an unparseable sowing date yields a nil DateSown.
func (s *Store) ReturnCore(ctx context.Context, id int64) (*inspection.ReturnCore, error) {
	ctx = ensureContext(ctx)
	var (
		cropID      int64
		inspectorID sql.NullInt64
		dateSown    sql.NullString
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT crop_id, inspector_id, date_sown FROM returns WHERE id = ?", id,
		).Scan(&cropID, &inspectorID, &dateSown)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load return %d: %w", id, err)
	}
	core := &inspection.ReturnCore{
		ID:          id,
		CropID:      cropID,
		InspectorID: inspectorID.Int64,
	}
	if dateSown.Valid {
		if sown, ok := inspection.ParseDate(dateSown.String); ok {
			core.DateSown = &sown
		}
	}
	return core, nil
}
