package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shalevclinic/backend/auth"
	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/internal/observability"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/services"
	"github.com/spf13/cobra"

	repomongo "github.com/shalevclinic/backend/repositories/mongo"
)

// newCreateAdminCommand creates the 'create-admin' command
func newCreateAdminCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < auth.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
			}
			return runCreateAdmin(cmd.Context(), username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the admin account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password of the admin account")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runCreateAdmin(ctx context.Context, username, password string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := repomongo.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := repomongo.NewUserRepository(db, logger)
	now := time.Now()
	user := &models.User{
		Username:  username,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("admin user %q created\n", username)
	return nil
}
