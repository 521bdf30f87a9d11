// Package sqlite implements repository.Repository using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"propgraph/internal/storage"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quantities (
		internal_id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		class TEXT NOT NULL,
		data JSON NOT NULL,
		value JSON,
		units TEXT,
		uncertainty JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS materials (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS material_quantities (
		material_id TEXT NOT NULL,
		internal_id TEXT NOT NULL,
		PRIMARY KEY (material_id, internal_id),
		FOREIGN KEY (material_id) REFERENCES materials(id) ON DELETE CASCADE,
		FOREIGN KEY (internal_id) REFERENCES quantities(internal_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_quantities_symbol ON quantities(symbol);
	CREATE INDEX IF NOT EXISTS idx_material_quantities_material ON material_quantities(material_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveQuantity upserts a quantity record and files every resolved
// provenance input into the value arena, so stripped trees can be
// rehydrated later.
func (r *Repository) SaveQuantity(ctx context.Context, sq *storage.StorageQuantity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveRecord(ctx, tx, sq, true); err != nil {
		return err
	}
	return tx.Commit()
}

// saveRecord writes one record; upsert controls whether an existing row
// is replaced (top-level saves) or kept (deduplicated arena entries).
func saveRecord(ctx context.Context, tx *sql.Tx, sq *storage.StorageQuantity, upsert bool) error {
	data, err := json.Marshal(sq)
	if err != nil {
		return fmt.Errorf("failed to marshal quantity %s: %w", sq.InternalID, err)
	}
	value, err := json.Marshal(sq.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", sq.InternalID, err)
	}
	var uncertainty any
	if sq.Uncertainty != nil {
		blob, err := json.Marshal(sq.Uncertainty)
		if err != nil {
			return fmt.Errorf("failed to marshal uncertainty for %s: %w", sq.InternalID, err)
		}
		uncertainty = string(blob)
	}

	stmt := `
		INSERT INTO quantities (internal_id, symbol, class, data, value, units, uncertainty)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(internal_id) DO UPDATE SET
			symbol = excluded.symbol,
			class = excluded.class,
			data = excluded.data,
			value = excluded.value,
			units = excluded.units,
			uncertainty = excluded.uncertainty`
	if !upsert {
		stmt = `
		INSERT INTO quantities (internal_id, symbol, class, data, value, units, uncertainty)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(internal_id) DO NOTHING`
	}
	if _, err := tx.ExecContext(ctx, stmt,
		sq.InternalID, sq.SymbolType.Name, sq.Class,
		string(data), string(value), sq.Units, uncertainty); err != nil {
		return fmt.Errorf("failed to save quantity %s: %w", sq.InternalID, err)
	}

	if sq.Provenance == nil {
		return nil
	}
	for _, in := range sq.Provenance.Inputs {
		if !in.Resolved {
			// Nothing to file; the value is expected to exist already.
			continue
		}
		if err := saveRecord(ctx, tx, &in.StorageQuantity, false); err != nil {
			return err
		}
	}
	return nil
}

// GetQuantity loads a record by internal id. Its provenance inputs come
// back unresolved; use Lookup to rehydrate.
func (r *Repository) GetQuantity(ctx context.Context, internalID string) (*storage.StorageQuantity, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM quantities WHERE internal_id = ?`, internalID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quantity %s not found", internalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query quantity: %w", err)
	}

	var sq storage.StorageQuantity
	if err := json.Unmarshal(data, &sq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quantity data: %w", err)
	}
	return &sq, nil
}

// SaveMaterial saves a material's records and membership.
func (r *Repository) SaveMaterial(ctx context.Context, materialID string, records []*storage.StorageQuantity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO materials (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, materialID); err != nil {
		return fmt.Errorf("failed to save material %s: %w", materialID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM material_quantities WHERE material_id = ?`, materialID); err != nil {
		return fmt.Errorf("failed to clear material membership: %w", err)
	}

	for _, sq := range records {
		if err := saveRecord(ctx, tx, sq, true); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO material_quantities (material_id, internal_id) VALUES (?, ?)
			 ON CONFLICT(material_id, internal_id) DO NOTHING`,
			materialID, sq.InternalID); err != nil {
			return fmt.Errorf("failed to save membership: %w", err)
		}
	}
	return tx.Commit()
}

// GetMaterial loads all records belonging to a material.
func (r *Repository) GetMaterial(ctx context.Context, materialID string) ([]*storage.StorageQuantity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.data FROM quantities q
		JOIN material_quantities mq ON mq.internal_id = q.internal_id
		WHERE mq.material_id = ?
		ORDER BY q.symbol, q.internal_id`, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query material: %w", err)
	}
	defer rows.Close()

	var records []*storage.StorageQuantity
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan quantity: %w", err)
		}
		var sq storage.StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quantity data: %w", err)
		}
		records = append(records, &sq)
	}
	return records, rows.Err()
}

// ListMaterials returns all stored material ids.
func (r *Repository) ListMaterials(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM materials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan material id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Lookup returns a storage.Lookup backed by the value arena.
func (r *Repository) Lookup(ctx context.Context) storage.Lookup {
	return storage.LookupFunc(func(internalID string) (storage.LookupEntry, bool) {
		var (
			value       []byte
			units       sql.NullString
			uncertainty sql.NullString
		)
		err := r.db.QueryRowContext(ctx,
			`SELECT value, units, uncertainty FROM quantities WHERE internal_id = ?`,
			internalID).Scan(&value, &units, &uncertainty)
		if err != nil {
			return storage.LookupEntry{}, false
		}

		entry := storage.LookupEntry{Units: units.String}
		if err := json.Unmarshal(value, &entry.Value); err != nil {
			return storage.LookupEntry{}, false
		}
		if uncertainty.Valid {
			var u storage.Uncertainty
			if err := json.Unmarshal([]byte(uncertainty.String), &u); err != nil {
				return storage.LookupEntry{}, false
			}
			entry.Uncertainty = &u
		}
		return entry, true
	})
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
