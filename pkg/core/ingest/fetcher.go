package ingest

import (
	"context"
	"fmt"
	"log"
	"os"

	"quarterly_financials/pkg/models"
)

// FactsCache stores raw companyfacts documents by CIK.
// Get returns nil, nil on a cache miss.
type FactsCache interface {
	Get(ctx context.Context, cik string) ([]byte, error)
	Save(ctx context.Context, cik string, entityName string, raw []byte) error
}

// SECFactsLoader resolves company facts from the cache, falling back to live SEC data.
type SECFactsLoader struct {
	client *EDGARClient
	cache  FactsCache // optional
}

// NewSECFactsLoader creates a loader. cache may be nil.
func NewSECFactsLoader(client *EDGARClient, cache FactsCache) *SECFactsLoader {
	if client == nil {
		client = NewEDGARClient()
	}
	return &SECFactsLoader{client: client, cache: cache}
}

// LoadFacts returns the decoded facts for a CIK.
func (l *SECFactsLoader) LoadFacts(ctx context.Context, cik string) (*models.CompanyFacts, error) {
	cik, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	// 1. Check cache first
	if l.cache != nil {
		raw, err := l.cache.Get(ctx, cik)
		if err != nil {
			log.Printf("[Fetcher] cache read failed for CIK%s: %v", cik, err)
		} else if raw != nil {
			facts, err := models.DecodeCompanyFacts(raw)
			if err == nil {
				log.Printf("[Fetcher] cache hit for CIK%s", cik)
				return facts, nil
			}
			log.Printf("[Fetcher] ignoring unreadable cache entry for CIK%s: %v", cik, err)
		}
	}

	// 2. Fetch from SEC
	raw, err := l.client.FetchCompanyFacts(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company facts for CIK%s: %w", cik, err)
	}
	log.Printf("[Fetcher] fetched %d bytes for CIK%s", len(raw), cik)

	facts, err := models.DecodeCompanyFacts(raw)
	if err != nil {
		return nil, err
	}

	// 3. Cache the result
	if l.cache != nil {
		if err := l.cache.Save(ctx, cik, facts.EntityName, raw); err != nil {
			log.Printf("[Fetcher] cache write failed for CIK%s: %v", cik, err)
		}
	}

	return facts, nil
}

// LoadByTicker resolves the ticker to a CIK and loads its facts.
func (l *SECFactsLoader) LoadByTicker(ctx context.Context, ticker string) (*models.CompanyFacts, string, error) {
	cik, err := l.client.LookupCIKByTicker(ctx, ticker)
	if err != nil {
		return nil, "", err
	}
	facts, err := l.LoadFacts(ctx, cik)
	return facts, cik, err
}

// LoadFile reads a companyfacts document saved on disk.
func LoadFile(path string) (*models.CompanyFacts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts file %s: %w", path, err)
	}
	facts, err := models.DecodeCompanyFacts(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return facts, nil
}
