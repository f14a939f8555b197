package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
	"github.com/oksasatya/user-directory/pkg/helpers"
)

// Fixture is a persisted user together with its plaintext password.
type Fixture struct {
	*entity.User
	PlainPassword string
}

// UserFactory persists users with unique, valid attributes.
type UserFactory struct {
	Repo   repository.UserRepository
	Hasher *helpers.BcryptHasher
	seq    atomic.Int64
}

func NewUserFactory(repo repository.UserRepository, hasher *helpers.BcryptHasher) *UserFactory {
	return &UserFactory{Repo: repo, Hasher: hasher}
}

// Create stores a new user; mutate may override attributes before the password is hashed.
func (f *UserFactory) Create(t testing.TB, mutate ...func(u *entity.User)) Fixture {
	t.Helper()
	n := f.seq.Add(1)
	u := &entity.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		Username:  fmt.Sprintf("user%d", n),
		Password:  fmt.Sprintf("password%d", n),
		AvatarURL: fmt.Sprintf("https://images.example.com/avatars/%d.png", n),
	}
	for _, m := range mutate {
		m(u)
	}
	plain := u.Password
	hash, err := f.Hasher.Hash(plain)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	u.Password = hash
	if err := f.Repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create fixture user: %v", err)
	}
	return Fixture{User: u, PlainPassword: plain}
}
