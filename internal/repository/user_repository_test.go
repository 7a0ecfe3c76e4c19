package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at",
	})
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().
		AddRow("u1", "ana", "ana@example.com", "hash", "Ana", "ANALYST", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("ana").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAnalyst, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsernameMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE 1=1 AND role = \$1 AND \(LOWER\(username\) LIKE \$2 OR LOWER\(full_name\) LIKE \$2\) ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("ANALYST", "%ana%").
		WillReturnRows(userRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE 1=1`).
		WithArgs("ANALYST", "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	role := models.RoleAnalyst
	_, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Search: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	// Unknown sort columns fall back to created_at.
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(userRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.UserFilter{SortBy: "password_hash; DROP TABLE users"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "ana", "ana@example.com", "hash", "Ana", "ANALYST", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash", FullName: "Ana", Role: models.RoleAnalyst, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET email").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.User{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	token := &models.RefreshToken{
		ID: "rt1", UserID: "u1", Token: "value",
		ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs("rt1", "u1", "value", sqlmock.AnyArg(), sqlmock.AnyArg(), false, "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
		AddRow("rt1", "u1", "value", time.Now().Add(time.Hour), time.Now(), false, nil, "", "")
	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token").
		WithArgs("value").
		WillReturnRows(rows)
	stored, err := repo.FindRefreshToken(context.Background(), "value")
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE, revoked_at").
		WithArgs("rt1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "rt1", time.Now()))

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE").
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.RevokeUserRefreshTokens(context.Background(), "u1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "u1"
	log := &models.AuditLog{UserID: &userID, Action: "LOGIN", Resource: "users"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
