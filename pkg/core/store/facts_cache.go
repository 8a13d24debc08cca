package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FactsCache caches raw SEC companyfacts documents.
// Supports Hybrid Vault: DB (Primary) + File System (Fallback/Local)
type FactsCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewFactsCache creates a new facts cache instance.
// If pool is nil, it falls back to a file-based cache in dir
// (default .cache/edgar/companyfacts).
func NewFactsCache(pool *pgxpool.Pool, dir string) *FactsCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "edgar", "companyfacts")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[FactsCache] WARNING: cannot create cache dir %s: %v", dir, err)
		}
	}
	return &FactsCache{pool: pool, fileDir: dir}
}

// fileEntry wraps the raw document on disk.
type fileEntry struct {
	CIK        string          `json:"cik"`
	EntityName string          `json:"entity_name"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Data       json.RawMessage `json:"data"`
}

// Get returns the cached document for a padded CIK, or nil, nil on a miss.
func (c *FactsCache) Get(ctx context.Context, cik string) ([]byte, error) {
	if err := checkCacheKey(cik); err != nil {
		return nil, err
	}

	// 1. Try DB
	if c.pool != nil {
		var data []byte
		err := c.pool.QueryRow(ctx, `SELECT data FROM company_facts WHERE cik = $1`, cik).Scan(&data)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to read db cache: %w", err)
		}
		// fall through to the file tier
	}

	// 2. Try File System
	if c.fileDir != "" {
		b, err := os.ReadFile(c.path(cik))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read file cache: %w", err)
		}
		var entry fileEntry
		if err := json.Unmarshal(b, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode file cache entry: %w", err)
		}
		return entry.Data, nil
	}

	return nil, nil
}

// Save stores a raw document in every configured tier.
func (c *FactsCache) Save(ctx context.Context, cik string, entityName string, raw []byte) error {
	if err := checkCacheKey(cik); err != nil {
		return err
	}
	if !json.Valid(raw) {
		return fmt.Errorf("refusing to cache invalid JSON for CIK%s", cik)
	}

	// 1. Save to DB
	if c.pool != nil {
		query := `
			INSERT INTO company_facts (cik, entity_name, data, fetched_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (cik)
			DO UPDATE SET
				entity_name = EXCLUDED.entity_name,
				data = EXCLUDED.data,
				fetched_at = NOW()
		`
		if _, err := c.pool.Exec(ctx, query, cik, entityName, raw); err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
	}

	// 2. Save to File
	if c.fileDir != "" {
		entry := fileEntry{
			CIK:        cik,
			EntityName: entityName,
			FetchedAt:  time.Now().UTC(),
			Data:       json.RawMessage(raw),
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.path(cik), b, 0644); err != nil {
			return fmt.Errorf("failed to save to file cache: %w", err)
		}
	}

	return nil
}

// Exists checks if a CIK is already cached
func (c *FactsCache) Exists(ctx context.Context, cik string) bool {
	if checkCacheKey(cik) != nil {
		return false
	}
	if c.pool != nil {
		var exists int
		err := c.pool.QueryRow(ctx, `SELECT 1 FROM company_facts WHERE cik = $1`, cik).Scan(&exists)
		if err == nil {
			return true
		}
	}

	if c.fileDir != "" {
		if _, err := os.Stat(c.path(cik)); err == nil {
			return true
		}
	}

	return false
}

// Clear removes every file-cached document. DB rows are left untouched.
func (c *FactsCache) Clear() error {
	if c.fileDir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(c.fileDir, "CIK*.json"))
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}
	return nil
}

// checkCacheKey accepts padded CIKs only, so keys always stay inside fileDir.
func checkCacheKey(cik string) error {
	if len(cik) != 10 {
		return fmt.Errorf("invalid cache key %q: want a 10 digit CIK", cik)
	}
	for _, r := range cik {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid cache key %q: want a 10 digit CIK", cik)
		}
	}
	return nil
}

func (c *FactsCache) path(cik string) string {
	return filepath.Join(c.fileDir, "CIK"+cik+".json")
}
