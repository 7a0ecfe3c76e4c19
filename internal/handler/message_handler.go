package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/service"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// MessageHandler wires HTTP endpoints to the message service.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a new handler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// List godoc
// @Summary List messages or the derived inbox
// @Description With view_type=inbox, folds the history into one conversation summary per counterpart and context
// @Tags Messages
// @Produce json
// @Param context query string false "Conversation context"
// @Param view_type query string false "inbox for conversation summaries"
// @Param participants_filter query string false "Counterpart user id for a single thread"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	contextKey := c.Query("context")

	if c.Query("view_type") == "inbox" {
		summaries, err := h.service.Inbox(c.Request.Context(), claims.UserID, contextKey)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summaries, nil)
		return
	}

	filter := models.MessageFilter{Context: contextKey, Limit: queryInt(c, "limit")}
	if other := c.Query("participants_filter"); other != "" {
		filter.Participants = []string{claims.UserID, other}
	}

	messages, err := h.service.ListMessages(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body models.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// MarkThreadRead godoc
// @Summary Mark a conversation thread read
// @Tags Messages
// @Accept json
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages/mark_read [post]
func (h *MessageHandler) MarkThreadRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		OtherUserID string `json:"other_user_id" binding:"required"`
		Context     string `json:"context"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "other_user_id required"))
		return
	}

	if err := h.service.MarkThreadRead(c.Request.Context(), claims.UserID, payload.OtherUserID, payload.Context); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
