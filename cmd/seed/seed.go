package main

import (
	"context"
	"fmt"
	"io"

	"github.com/oksasatya/user-directory/config"
	appuser "github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/domain/apperror"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

// seed creates the configured demo user. When the email or username is
// already taken it reports the user holding the seed email, if any, and
// leaves the store untouched.
func seed(ctx context.Context, svc *appuser.Service, users repository.UserRepository, cfg *config.Config, out io.Writer) error {
	u, err := svc.CreateUser(ctx, appuser.CreateUserInput{
		Email:    cfg.SeedEmail,
		Username: cfg.SeedUsername,
		Password: cfg.SeedPassword,
	})
	if err == nil {
		fmt.Fprintf(out, "seeded user: id=%s email=%s username=%s\n", u.ID, u.Email, u.Username)
		return nil
	}
	if !apperror.Is(err, apperror.KindConflict) {
		return err
	}

	existing, lookupErr := users.GetByEmail(ctx, cfg.SeedEmail)
	switch {
	case lookupErr == nil:
		fmt.Fprintf(out, "seed skipped: %s (existing user id=%s username=%s)\n", err.Error(), existing.ID, existing.Username)
	case apperror.Is(lookupErr, apperror.KindNotFound):
		fmt.Fprintf(out, "seed skipped: %s\n", err.Error())
	default:
		return fmt.Errorf("look up existing seed user: %w", lookupErr)
	}
	return nil
}
