package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/jengzang/reallocation-screener/internal/middleware"
	"github.com/jengzang/reallocation-screener/internal/models"
)

var integrationOpts struct {
	name     string
	provider string
	prefixes []string
	disabled bool
}

var integrationCmd = &cobra.Command{
	Use:   "integration",
	Short: "Manage API integrations",
}

var integrationCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or replace an API integration",
	Long: `Issues an idempotent create-or-replace of the API integration record.
Unset flags take the configured defaults. The platform's error text is printed as-is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		req := models.IntegrationRequest{
			Name:            integrationOpts.name,
			APIProvider:     integrationOpts.provider,
			AllowedPrefixes: integrationOpts.prefixes,
		}
		if integrationOpts.disabled {
			enabled := false
			req.Enabled = &enabled
		}

		msg, err := a.integration.CreateIntegration(cmd.Context(), req, os.Getenv("USER"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var tokenOpts struct {
	subject string
	role    string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the admin endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWTSecret(); err != nil {
			return err
		}

		now := time.Now()
		claims := middleware.AdminClaims{
			Role: tokenOpts.role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   tokenOpts.subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenOpts.ttl)),
			},
		}

		token, err := middleware.NewAuthorizer(cfg.JWTSecret, cfg.Integration.AdminRoles).Sign(claims)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	f := integrationCreateCmd.Flags()
	f.StringVar(&integrationOpts.name, "name", "", "integration name")
	f.StringVar(&integrationOpts.provider, "provider", "", "API provider")
	f.StringSliceVar(&integrationOpts.prefixes, "prefix", nil, "allowed URL prefixes")
	f.BoolVar(&integrationOpts.disabled, "disabled", false, "create the integration disabled")
	integrationCmd.AddCommand(integrationCreateCmd)

	tf := tokenCmd.Flags()
	tf.StringVar(&tokenOpts.subject, "subject", "operator", "token subject")
	tf.StringVar(&tokenOpts.role, "role", "ACCOUNTADMIN", "role claim")
	tf.DurationVar(&tokenOpts.ttl, "ttl", time.Hour, "token lifetime")
}
