package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"trivia-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads the ordered question catalog from Postgres. Each
// question is a JSONB row; the position column defines presentation
// order.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM catalog_questions ORDER BY position`)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var catalog domain.Catalog
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan question: %w", err)
		}
		var question domain.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			return domain.Catalog{}, fmt.Errorf("unmarshal question: %w", err)
		}
		catalog.Questions = append(catalog.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog invalid: %w", err)
	}
	return catalog, nil
}
