package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jengzang/reallocation-screener/internal/models"
)

// IntegrationRepository handles database operations for API integrations
type IntegrationRepository struct {
	db *sql.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// CreateOrReplace registers an integration, replacing any existing one with the same name
func (r *IntegrationRepository) CreateOrReplace(ctx context.Context, in models.Integration) error {
	prefixes, err := json.Marshal(in.AllowedPrefixes)
	if err != nil {
		return fmt.Errorf("failed to encode allowed prefixes: %w", err)
	}

	query := `INSERT INTO api_integrations (name, api_provider, allowed_prefixes, enabled, created_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			api_provider = excluded.api_provider,
			allowed_prefixes = excluded.allowed_prefixes,
			enabled = excluded.enabled,
			created_by = excluded.created_by,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		in.Name, in.APIProvider, string(prefixes), in.Enabled, in.CreatedBy, in.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetByName retrieves an integration by name
func (r *IntegrationRepository) GetByName(ctx context.Context, name string) (*models.Integration, error) {
	query := `SELECT name, api_provider, allowed_prefixes, enabled, COALESCE(created_by, ''), updated_at
		FROM api_integrations WHERE name = ?`

	var (
		in        models.Integration
		prefixes  string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&in.Name, &in.APIProvider, &prefixes, &in.Enabled, &in.CreatedBy, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}

	if err := json.Unmarshal([]byte(prefixes), &in.AllowedPrefixes); err != nil {
		return nil, fmt.Errorf("failed to decode allowed prefixes: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		in.UpdatedAt = ts
	}

	return &in, nil
}
