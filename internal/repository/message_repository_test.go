package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/models"
)

func messageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "context", "content", "read", "created_at"})
}

func TestMessageRepositoryListForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := messageRows().
		AddRow("m1", "u1", "u2", "general", "hello", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, sender_id, recipient_id, context, content, "read", created_at FROM messages WHERE (sender_id = $1 OR recipient_id = $1) ORDER BY created_at DESC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	messages, err := repo.ListForUser(context.Background(), "u1", models.MessageFilter{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryListForUserParticipantPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`AND context = \$2 AND \(\(sender_id = \$3 AND recipient_id = \$4\) OR \(sender_id = \$4 AND recipient_id = \$3\)\) ORDER BY created_at DESC LIMIT 50`).
		WithArgs("u1", "campaign:10", "u1", "u2").
		WillReturnRows(messageRows())

	_, err := repo.ListForUser(context.Background(), "u1", models.MessageFilter{
		Context:      "campaign:10",
		Participants: []string{"u1", "u2"},
		Limit:        50,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(sqlmock.AnyArg(), "u1", "u2", "general", "hello", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.Message{SenderID: "u1", RecipientID: "u2", Content: "hello"}
	require.NoError(t, repo.Create(context.Background(), message))
	assert.NotEmpty(t, message.ID)
	assert.Equal(t, models.GeneralContext, message.Context)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryMarkThreadRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE messages SET "read" = TRUE WHERE recipient_id = $1 AND sender_id = $2 AND context = $3 AND "read" = FALSE`)).
		WithArgs("u1", "u2", "general").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkThreadRead(context.Background(), "u1", "u2", "general"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND "read" = FALSE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
