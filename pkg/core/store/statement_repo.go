package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quarterly_financials/pkg/core/present"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatementRepo persists computed quarterly statement tables.
// Every save is a new snapshot; Latest returns the most recent one.
type StatementRepo struct {
	pool *pgxpool.Pool
}

// NewStatementRepo creates a new repository instance.
func NewStatementRepo(pool *pgxpool.Pool) *StatementRepo {
	return &StatementRepo{pool: pool}
}

// Snapshot is a stored table with its metadata.
type Snapshot struct {
	ID         string         `json:"id"`
	CIK        string         `json:"cik"`
	EntityName string         `json:"entity_name"`
	Source     string         `json:"source"` // "out", "agent" or "api"
	CreatedAt  time.Time      `json:"created_at"`
	Table      *present.Table `json:"table"`
}

// Save stores the table and returns the new snapshot ID.
func (r *StatementRepo) Save(ctx context.Context, cik, entityName, source string, table *present.Table) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(table)
	if err != nil {
		return "", fmt.Errorf("failed to marshal table: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO quarterly_statements (id, cik, entity_name, table_json, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.pool.Exec(ctx, query, id, cik, entityName, jsonData, source, time.Now()); err != nil {
		return "", fmt.Errorf("failed to save statement: %w", err)
	}
	return id, nil
}

// Latest loads the most recent snapshot for a CIK.
func (r *StatementRepo) Latest(ctx context.Context, cik string) (*Snapshot, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id::text, cik, COALESCE(entity_name, ''), source, created_at, table_json
		FROM quarterly_statements
		WHERE cik = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var snap Snapshot
	var jsonData []byte
	err := r.pool.QueryRow(ctx, query, cik).Scan(&snap.ID, &snap.CIK, &snap.EntityName, &snap.Source, &snap.CreatedAt, &jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no statement found for CIK %s", cik)
		}
		return nil, fmt.Errorf("failed to load statement: %w", err)
	}

	if err := json.Unmarshal(jsonData, &snap.Table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}
	return &snap, nil
}
