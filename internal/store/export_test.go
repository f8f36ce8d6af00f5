package store

import "context"

func (tx *Tx) ForceSchemaVersion(ctx context.Context, version int) error {
	_, err := tx.q.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}
