package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mediatrack/campaign-api/internal/models"
)

// "read" is a reserved word in postgres, hence the quoting.
const messageColumns = `id, sender_id, recipient_id, context, content, "read", created_at`

// MessageRepository provides database access for direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListForUser returns every message the user sent or received, newest first,
// optionally narrowed by context or a participant pair.
func (r *MessageRepository) ListForUser(ctx context.Context, userID string, filter models.MessageFilter) ([]models.Message, error) {
	query := fmt.Sprintf("SELECT %s FROM messages WHERE (sender_id = $1 OR recipient_id = $1)", messageColumns)
	args := []interface{}{userID}

	if filter.Context != "" {
		args = append(args, filter.Context)
		query += fmt.Sprintf(" AND context = $%d", len(args))
	}
	if len(filter.Participants) == 2 {
		args = append(args, filter.Participants[0], filter.Participants[1])
		query += fmt.Sprintf(" AND ((sender_id = $%d AND recipient_id = $%d) OR (sender_id = $%d AND recipient_id = $%d))",
			len(args)-1, len(args), len(args), len(args)-1)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Context == "" {
		message.Context = models.GeneralContext
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO messages (id, sender_id, recipient_id, context, content, "read", created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, message.ID, message.SenderID, message.RecipientID, message.Context, message.Content, message.Read, message.CreatedAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// MarkThreadRead flags every message sent to the user within a thread as read.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, userID, otherUserID, context string) error {
	const query = `UPDATE messages SET "read" = TRUE WHERE recipient_id = $1 AND sender_id = $2 AND context = $3 AND "read" = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, otherUserID, context); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread messages addressed to the user.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND "read" = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
