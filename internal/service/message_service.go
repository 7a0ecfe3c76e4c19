package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mediatrack/campaign-api/internal/dto"
	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
)

type messageRepository interface {
	ListForUser(ctx context.Context, userID string, filter models.MessageFilter) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	MarkThreadRead(ctx context.Context, userID, otherUserID, context string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// MessageService handles direct messages and the derived inbox view.
type MessageService struct {
	messages    messageRepository
	users       userDirectory
	validate    *validator.Validate
	logger      *zap.Logger
	maxPageSize int
}

// MessageServiceParams bundles the dependencies for NewMessageService.
type MessageServiceParams struct {
	Messages    messageRepository
	Users       userDirectory
	Validator   *validator.Validate
	Logger      *zap.Logger
	MaxPageSize int
}

// NewMessageService constructs a MessageService with defaults filled in.
func NewMessageService(params MessageServiceParams) *MessageService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.MaxPageSize <= 0 {
		params.MaxPageSize = 500
	}
	return &MessageService{
		messages:    params.Messages,
		users:       params.Users,
		validate:    params.Validator,
		logger:      params.Logger,
		maxPageSize: params.MaxPageSize,
	}
}

// ListMessages returns raw messages for the user, scoped by the filter.
func (s *MessageService) ListMessages(ctx context.Context, userID string, filter models.MessageFilter) ([]models.Message, error) {
	if filter.Limit <= 0 || filter.Limit > s.maxPageSize {
		filter.Limit = s.maxPageSize
	}
	messages, err := s.messages.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load messages")
	}
	return messages, nil
}

// Inbox derives conversation summaries from the user's message history.
func (s *MessageService) Inbox(ctx context.Context, userID string, contextKey string) ([]dto.ConversationSummary, error) {
	messages, err := s.messages.ListForUser(ctx, userID, models.MessageFilter{Context: contextKey, Limit: s.maxPageSize})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load messages")
	}

	summaries := DeriveConversations(messages, userID)

	ids := make([]string, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, c.OtherUserID)
	}
	names, err := s.resolveNames(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve conversation participant names", zap.Error(err))
	}
	for i := range summaries {
		if name, ok := names[summaries[i].OtherUserID]; ok && name != "" {
			summaries[i].OtherUserName = name
		}
	}
	return summaries, nil
}

// DeriveConversations folds a message list into one summary per counterpart
// and context pair. The newest message wins as the preview; summaries are
// ordered by that timestamp, newest first. Participant names are filled with
// a placeholder until resolved against the user directory.
func DeriveConversations(messages []models.Message, userID string) []dto.ConversationSummary {
	type key struct {
		otherUserID string
		context     string
	}

	index := make(map[key]int)
	var summaries []dto.ConversationSummary

	for _, m := range messages {
		other := m.RecipientID
		if m.RecipientID == userID {
			other = m.SenderID
		}
		if other == "" || other == userID {
			continue
		}
		contextKey := m.Context
		if contextKey == "" {
			contextKey = models.GeneralContext
		}

		k := key{otherUserID: other, context: contextKey}
		idx, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			summaries = append(summaries, dto.ConversationSummary{
				OtherUserID:   other,
				OtherUserName: fmt.Sprintf("User #%s", other),
				Context:       contextKey,
				LastMessage:   m.Content,
				LastTimestamp: m.CreatedAt,
				MessageCount:  1,
			})
			continue
		}

		summaries[idx].MessageCount++
		if m.CreatedAt.After(summaries[idx].LastTimestamp) {
			summaries[idx].LastMessage = m.Content
			summaries[idx].LastTimestamp = m.CreatedAt
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastTimestamp.After(summaries[j].LastTimestamp)
	})
	return summaries
}

// Send validates and persists a new message from the sender.
func (s *MessageService) Send(ctx context.Context, senderID string, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err)
	}
	if req.RecipientID == senderID {
		return nil, appErrors.ErrValidation.WithMessage("cannot send a message to yourself")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, appErrors.ErrValidation.WithMessage("message content cannot be empty")
	}
	if _, err := s.users.FindByID(ctx, req.RecipientID); err != nil {
		return nil, appErrors.ErrNotFound.WithMessage("recipient not found")
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Context:     req.Context,
		Content:     req.Content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return message, nil
}

// MarkThreadRead marks every message from the counterpart to the user within
// the context as read.
func (s *MessageService) MarkThreadRead(ctx context.Context, userID, otherUserID, contextKey string) error {
	if contextKey == "" {
		contextKey = models.GeneralContext
	}
	if err := s.messages.MarkThreadRead(ctx, userID, otherUserID, contextKey); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark thread read")
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	return count, nil
}

func (s *MessageService) resolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}
