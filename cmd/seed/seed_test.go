package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/user-directory/config"
	appuser "github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/testutil"
	"github.com/oksasatya/user-directory/pkg/helpers"
)

func seedConfig() *config.Config {
	return &config.Config{SeedEmail: "demo@example.com", SeedUsername: "demo", SeedPassword: "password123"}
}

func newSeedService(repo *testutil.UserRepository) *appuser.Service {
	return appuser.NewService(repo, helpers.NewBcryptHasher(bcrypt.MinCost), nil)
}

func TestSeed_CreatesUser(t *testing.T) {
	repo := testutil.NewUserRepository()
	var out bytes.Buffer

	require.NoError(t, seed(context.Background(), newSeedService(repo), repo, seedConfig(), &out))

	assert.Equal(t, 1, repo.Len())
	assert.Contains(t, out.String(), "seeded user: id=")
	assert.Contains(t, out.String(), "email=demo@example.com")
}

func TestSeed_ReportsExistingUser(t *testing.T) {
	repo := testutil.NewUserRepository()
	svc := newSeedService(repo)
	var first bytes.Buffer
	require.NoError(t, seed(context.Background(), svc, repo, seedConfig(), &first))
	existing, err := repo.GetByEmail(context.Background(), "demo@example.com")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, seed(context.Background(), svc, repo, seedConfig(), &out))

	assert.Equal(t, 1, repo.Len())
	assert.Contains(t, out.String(), "seed skipped: email already in use")
	assert.Contains(t, out.String(), "existing user id="+existing.ID)
}

func TestSeed_UsernameTakenByAnotherEmail(t *testing.T) {
	repo := testutil.NewUserRepository()
	require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "someone@example.com", Username: "demo"}))
	var out bytes.Buffer

	require.NoError(t, seed(context.Background(), newSeedService(repo), repo, seedConfig(), &out))

	assert.Equal(t, "seed skipped: username already in use\n", out.String())
}

func TestSeed_InvalidConfig(t *testing.T) {
	repo := testutil.NewUserRepository()
	cfg := seedConfig()
	cfg.SeedPassword = "abc"

	err := seed(context.Background(), newSeedService(repo), repo, cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}
