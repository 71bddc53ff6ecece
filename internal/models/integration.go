package models

import "time"

// Integration represents an API integration registered on the data platform
type Integration struct {
	Name            string    `json:"name" db:"name"`
	APIProvider     string    `json:"apiProvider" db:"api_provider"`
	AllowedPrefixes []string  `json:"allowedPrefixes" db:"allowed_prefixes"`
	Enabled         bool      `json:"enabled" db:"enabled"`
	CreatedBy       string    `json:"createdBy,omitempty" db:"created_by"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// IntegrationRequest is the admin request body; empty fields take configured defaults
type IntegrationRequest struct {
	Name            string   `json:"name"`
	APIProvider     string   `json:"apiProvider"`
	AllowedPrefixes []string `json:"allowedPrefixes"`
	Enabled         *bool    `json:"enabled"`
}
