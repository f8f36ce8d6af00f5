package store

import (
	"context"
	"fmt"
)

// Stats summarizes database contents for status reporting.
type Stats struct {
	Crops          int
	Templates      int
	Returns        int
	Checklists     int
	Stages         int
	PendingStages  int
	ResolvedStages int
}

// Stats counts rows across the inspection tables.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(1) FROM crops),
		(SELECT COUNT(1) FROM crop_stage_templates),
		(SELECT COUNT(1) FROM returns),
		(SELECT COUNT(1) FROM inspection_checklists),
		(SELECT COUNT(1) FROM inspection_stages),
		(SELECT COUNT(1) FROM inspection_stages WHERE decision IS NULL OR decision = 'provisional')`,
	).Scan(&stats.Crops, &stats.Templates, &stats.Returns, &stats.Checklists, &stats.Stages, &stats.PendingStages)
	if err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	stats.ResolvedStages = stats.Stages - stats.PendingStages
	return stats, nil
}
