package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/suleman231/provisimarket-hub/pkg/database"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for the snapshots table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// SnapshotStore implements repository.SnapshotStore on a key/value table.
type SnapshotStore struct {
	db database.DBTX
}

// NewSnapshotStore creates a PostgreSQL-backed store.
func NewSnapshotStore(db database.DBTX) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load reads the blob at key.
func (s *SnapshotStore) Load(ctx context.Context, key string) (data []byte, err error) {
	const query = `SELECT data FROM snapshots WHERE key = $1`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "LoadSnapshot", query)
	defer func() { end(err) }()

	if err = s.db.QueryRow(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("snapshot", key)
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return data, nil
}

// Save upserts the blob at key.
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) (err error) {
	const query = `
		INSERT INTO snapshots (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SaveSnapshot", query)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
