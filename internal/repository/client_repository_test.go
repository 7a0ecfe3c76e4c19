package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/models"
)

func clientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "contact_email", "phone", "active", "created_at", "updated_at",
	})
}

func TestClientRepositoryListAllSkipsPagination(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	now := time.Now()
	rows := clientRows().
		AddRow("c1", "Acme", "ops@acme.test", "555", true, now, now).
		AddRow("c2", "Beta", "", "", false, now, now)
	mock.ExpectQuery(`SELECT .+ FROM clients ORDER BY name ASC$`).
		WillReturnRows(rows)

	clients, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Acme", clients[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryListCapsPageSize(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM clients WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0`).
		WillReturnRows(clientRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.ClientFilter{PageSize: 500})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
