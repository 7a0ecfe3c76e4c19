package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatrack/campaign-api/internal/models"
)

type mockMessageRepo struct {
	items      []models.Message
	listErr    error
	created    []models.Message
	markedRead [][3]string
	unread     int
}

func (m *mockMessageRepo) ListForUser(ctx context.Context, userID string, filter models.MessageFilter) ([]models.Message, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = "generated"
	message.CreatedAt = time.Now()
	m.created = append(m.created, *message)
	return nil
}

func (m *mockMessageRepo) MarkThreadRead(ctx context.Context, userID, otherUserID, context string) error {
	m.markedRead = append(m.markedRead, [3]string{userID, otherUserID, context})
	return nil
}

func (m *mockMessageRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.unread, nil
}

type mockUserDirectory struct {
	users map[string]*models.User
}

func (m *mockUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserDirectory) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var result []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func ts(minute int) time.Time {
	return time.Date(2024, 6, 1, 10, minute, 0, 0, time.UTC)
}

func TestDeriveConversationsFoldsByCounterpartAndContext(t *testing.T) {
	messages := []models.Message{
		{SenderID: "me", RecipientID: "2", Context: "campaign:10", Content: "first", CreatedAt: ts(1)},
		{SenderID: "2", RecipientID: "me", Context: "campaign:10", Content: "second", CreatedAt: ts(2)},
		{SenderID: "3", RecipientID: "me", Content: "hello", CreatedAt: ts(3)},
	}

	summaries := DeriveConversations(messages, "me")
	require.Len(t, summaries, 2)

	// Newest conversation first.
	assert.Equal(t, "3", summaries[0].OtherUserID)
	assert.Equal(t, models.GeneralContext, summaries[0].Context)

	assert.Equal(t, "2", summaries[1].OtherUserID)
	assert.Equal(t, "campaign:10", summaries[1].Context)
	assert.Equal(t, 2, summaries[1].MessageCount)
	assert.Equal(t, "second", summaries[1].LastMessage)
}

func TestDeriveConversationsNewestMessageWinsRegardlessOfOrder(t *testing.T) {
	messages := []models.Message{
		{SenderID: "2", RecipientID: "me", Content: "newest", CreatedAt: ts(9)},
		{SenderID: "me", RecipientID: "2", Content: "older", CreatedAt: ts(1)},
	}

	summaries := DeriveConversations(messages, "me")
	require.Len(t, summaries, 1)
	assert.Equal(t, "newest", summaries[0].LastMessage)
	assert.Equal(t, ts(9), summaries[0].LastTimestamp)
	assert.Equal(t, 2, summaries[0].MessageCount)
}

func TestDeriveConversationsSeparatesContexts(t *testing.T) {
	messages := []models.Message{
		{SenderID: "2", RecipientID: "me", Context: "campaign:10", Content: "a", CreatedAt: ts(1)},
		{SenderID: "2", RecipientID: "me", Context: "campaign:11", Content: "b", CreatedAt: ts(2)},
	}

	summaries := DeriveConversations(messages, "me")
	assert.Len(t, summaries, 2)
}

func TestDeriveConversationsSkipsSelfAndBlankCounterparts(t *testing.T) {
	messages := []models.Message{
		{SenderID: "me", RecipientID: "me", Content: "note to self", CreatedAt: ts(1)},
		{SenderID: "", RecipientID: "me", Content: "orphan", CreatedAt: ts(2)},
	}

	summaries := DeriveConversations(messages, "me")
	assert.Empty(t, summaries)
}

func TestDeriveConversationsPlaceholderName(t *testing.T) {
	messages := []models.Message{
		{SenderID: "42", RecipientID: "me", Content: "hi", CreatedAt: ts(1)},
	}

	summaries := DeriveConversations(messages, "me")
	require.Len(t, summaries, 1)
	assert.Equal(t, "User #42", summaries[0].OtherUserName)
}

func TestDeriveConversationsDeterministic(t *testing.T) {
	messages := []models.Message{
		{SenderID: "me", RecipientID: "2", Context: "campaign:10", Content: "first", CreatedAt: ts(1)},
		{SenderID: "2", RecipientID: "me", Context: "campaign:10", Content: "second", CreatedAt: ts(2)},
		{SenderID: "3", RecipientID: "me", Content: "hello", CreatedAt: ts(3)},
		{SenderID: "me", RecipientID: "4", Context: "campaign:11", Content: "plan", CreatedAt: ts(4)},
	}

	first := DeriveConversations(messages, "me")
	second := DeriveConversations(messages, "me")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].OtherUserID, second[i].OtherUserID)
		assert.Equal(t, first[i].Context, second[i].Context)
		assert.Equal(t, first[i].MessageCount, second[i].MessageCount)
		assert.Equal(t, first[i].LastMessage, second[i].LastMessage)
		assert.Equal(t, first[i].LastTimestamp, second[i].LastTimestamp)
	}
}

func TestInboxResolvesParticipantNames(t *testing.T) {
	repo := &mockMessageRepo{items: []models.Message{
		{SenderID: "2", RecipientID: "me", Content: "hi", CreatedAt: ts(1)},
	}}
	users := &mockUserDirectory{users: map[string]*models.User{
		"2": {ID: "2", FullName: "Bea Martin"},
	}}

	svc := NewMessageService(MessageServiceParams{Messages: repo, Users: users})
	summaries, err := svc.Inbox(context.Background(), "me", "")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bea Martin", summaries[0].OtherUserName)
}

func TestSendValidatesPayload(t *testing.T) {
	repo := &mockMessageRepo{}
	users := &mockUserDirectory{users: map[string]*models.User{
		"2": {ID: "2", FullName: "Bea Martin"},
	}}
	svc := NewMessageService(MessageServiceParams{Messages: repo, Users: users})

	_, err := svc.Send(context.Background(), "me", models.SendMessageRequest{RecipientID: "me", Content: "hi"})
	require.Error(t, err)

	_, err = svc.Send(context.Background(), "me", models.SendMessageRequest{RecipientID: "2", Content: "   "})
	require.Error(t, err)

	_, err = svc.Send(context.Background(), "me", models.SendMessageRequest{RecipientID: "404", Content: "hi"})
	require.Error(t, err)

	msg, err := svc.Send(context.Background(), "me", models.SendMessageRequest{RecipientID: "2", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "me", msg.SenderID)
	assert.Len(t, repo.created, 1)
}

func TestMarkThreadReadDefaultsContext(t *testing.T) {
	repo := &mockMessageRepo{}
	svc := NewMessageService(MessageServiceParams{Messages: repo, Users: &mockUserDirectory{}})

	require.NoError(t, svc.MarkThreadRead(context.Background(), "me", "2", ""))
	require.Len(t, repo.markedRead, 1)
	assert.Equal(t, models.GeneralContext, repo.markedRead[0][2])
}
