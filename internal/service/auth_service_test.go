package service

import (
	"testing"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *repository.MemoryStore, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		Email:    email,
		FullName: "Operador",
		Role:     model.RoleOperator,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, store.CreateUser(user))
	return user
}

func TestLoginRotatesTokenVersion(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "op@exemplo.com", "senha-segura")
	svc := NewAuthService(store.UserRepo(), store.AuditRepo())

	first, err := svc.Login(&LoginRequest{Email: user.Email, Password: "senha-segura"})
	require.NoError(t, err)
	firstClaims, err := jwt.ValidateToken(first.Token)
	require.NoError(t, err)

	second, err := svc.Login(&LoginRequest{Email: user.Email, Password: "senha-segura"})
	require.NoError(t, err)
	secondClaims, err := jwt.ValidateToken(second.Token)
	require.NoError(t, err)

	// The second login invalidates the first session.
	assert.NotEqual(t, firstClaims.TokenVersion, secondClaims.TokenVersion)
	stored, err := store.FindUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, secondClaims.TokenVersion, stored.TokenVersion)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "op@exemplo.com", "senha-segura")
	svc := NewAuthService(store.UserRepo(), store.AuditRepo())

	_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown users get the same answer as wrong passwords.
	_, err = svc.Login(&LoginRequest{Email: "ninguem@exemplo.com", Password: "senha-segura"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "op@exemplo.com", "senha-segura")
	user.IsActive = false
	require.NoError(t, store.UpdateUser(user))
	svc := NewAuthService(store.UserRepo(), store.AuditRepo())

	_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "senha-segura"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordKicksSession(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "op@exemplo.com", "senha-segura")
	svc := NewAuthService(store.UserRepo(), store.AuditRepo())

	logged, err := svc.Login(&LoginRequest{Email: user.Email, Password: "senha-segura"})
	require.NoError(t, err)
	claims, err := jwt.ValidateToken(logged.Token)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(user.ID, "curta", "admin"), invariant.ErrInvalidInput)
	require.NoError(t, svc.ResetPassword(user.ID, "nova-senha-longa", "admin"))

	stored, err := store.FindUserByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenVersion, stored.TokenVersion)
	assert.True(t, stored.CheckPassword("nova-senha-longa"))
	assert.False(t, stored.CheckPassword("senha-segura"))
}
