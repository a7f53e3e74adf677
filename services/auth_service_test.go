package services

import (
	"context"
	"testing"

	"github.com/matchpoint/tournament-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*models.User)}
	svc := NewAuthService(users)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    " Alex@Example.com ",
		FullName: "Alex Doe",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.Equal(t, "Alex Doe", user.FullName)
	assert.Empty(t, user.PasswordHash)

	// The stored hash must never be the raw password.
	stored := users.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*models.User)}
	svc := NewAuthService(users)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "long enough"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*models.User)}
	svc := NewAuthService(users)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLogin(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*models.User)}
	svc := NewAuthService(users)

	registered, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@b.com", Password: "long enough"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
