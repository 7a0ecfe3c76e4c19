package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/pkg/config"
)

type mockAuthUserRepo struct {
	users         map[string]*models.User
	byUsername    map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	revokedAll    []string
	audits        []models.AuditLog
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{
		users:         make(map[string]*models.User),
		byUsername:    make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthUserRepo) add(user *models.User) {
	m.users[user.ID] = user
	m.byUsername[user.Username] = user
}

func (m *mockAuthUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated"
	}
	m.add(user)
	return nil
}

func (m *mockAuthUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range m.refreshTokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func (m *mockAuthUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test_secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func hashPassword(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{
		ID: "u1", Username: "ana", PasswordHash: hashPassword(t, "secret"),
		FullName: "Ana", Role: models.RoleAnalyst, Active: true,
	})

	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})
	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleAnalyst, resp.Role)
	assert.Equal(t, "u1", resp.UserID)
	assert.Len(t, repo.audits, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAnalyst, claims.Role)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{
		ID: "u1", Username: "ana", PasswordHash: hashPassword(t, "secret"),
		Role: models.RoleAnalyst, Active: true,
	})
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "wrong"})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "secret"})
	require.Error(t, err)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{
		ID: "u1", Username: "ana", PasswordHash: hashPassword(t, "secret"),
		Role: models.RoleAnalyst, Active: false,
	})
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "secret"})
	require.Error(t, err)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{
		ID: "u1", Username: "ana", PasswordHash: hashPassword(t, "secret"),
		Role: models.RoleAnalyst, Active: true,
	})
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "secret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token is revoked after rotation.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{ID: "u1", Username: "ana", Role: models.RoleAnalyst, Active: true})
	repo.refreshTokens["stale"] = &models.RefreshToken{
		ID: "rt1", UserID: "u1", Token: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.add(&models.User{
		ID: "u1", Username: "ana", PasswordHash: hashPassword(t, "old_secret"),
		Role: models.RoleAnalyst, Active: true,
	})
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new_secret",
	})
	require.Error(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "old_secret", NewPassword: "new_secret",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAll, "u1")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u1"].PasswordHash), []byte("new_secret")))
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(AuthServiceParams{Users: newMockAuthUserRepo(), JWT: testJWTConfig()})
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockAuthUserRepo()
	svc := NewAuthService(AuthServiceParams{Users: repo, JWT: testJWTConfig()})

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "bea", Email: "bea@example.com", Password: "secret123", FullName: "Bea Martin", Role: models.RoleManager,
	})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Username: "bea", Email: "bea2@example.com", Password: "secret123", FullName: "Bea Martin", Role: models.RoleManager,
	})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Username: "cleo", Email: "cleo@example.com", Password: "secret123", FullName: "Cleo", Role: "SUPERUSER",
	})
	require.Error(t, err)
}
