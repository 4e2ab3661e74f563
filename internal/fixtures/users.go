// Package fixtures builds persisted records with plausible random data.
package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

var (
	firstNames = []string{"Oluwatobiloba", "Ada", "Chidi", "Ngozi", "Tunde", "Amaka", "Emeka", "Funmi"}
	lastNames  = []string{"Raheem", "Okafor", "Adeyemi", "Balogun", "Eze", "Nwosu", "Ogunleye"}
)

// UserOption overrides a generated attribute.
type UserOption func(*userAttrs)

type userAttrs struct {
	firstName string
	lastName  string
	email     string
	phone     *string
	password  string
}

// WithPassword fixes the plaintext password.
func WithPassword(password string) UserOption {
	return func(s *userAttrs) { s.password = password }
}

// WithEmail fixes the email address.
func WithEmail(email string) UserOption {
	return func(s *userAttrs) { s.email = email }
}

// WithName fixes first and last name.
func WithName(first, last string) UserOption {
	return func(s *userAttrs) { s.firstName, s.lastName = first, last }
}

// UserFactory creates users directly in the store, bypassing registration.
type UserFactory struct {
	users  storage.UserStore
	hasher *auth.PasswordHasher
}

// NewUserFactory returns a factory writing to users.
func NewUserFactory(users storage.UserStore, hasher *auth.PasswordHasher) *UserFactory {
	return &UserFactory{users: users, hasher: hasher}
}

// Create persists one user and returns it along with its plaintext password.
func (f *UserFactory) Create(ctx context.Context, opts ...UserOption) (models.User, string, error) {
	first := firstNames[rand.IntN(len(firstNames))]
	last := lastNames[rand.IntN(len(lastNames))]
	phone := fmt.Sprintf("+234 %010d", rand.Int64N(10_000_000_000))
	attrs := userAttrs{
		firstName: first,
		lastName:  last,
		email:     fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), uuid.NewString()[:8]),
		phone:     &phone,
		password:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(&attrs)
	}

	hash, err := f.hasher.Hash(attrs.password)
	if err != nil {
		return models.User{}, "", err
	}
	user, err := f.users.CreateUser(ctx, models.User{
		FirstName:    attrs.firstName,
		LastName:     attrs.lastName,
		Email:        attrs.email,
		Phone:        attrs.phone,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, "", err
	}
	return user, attrs.password, nil
}

// CreateMany persists n users with random attributes.
func (f *UserFactory) CreateMany(ctx context.Context, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for range n {
		user, _, err := f.Create(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
