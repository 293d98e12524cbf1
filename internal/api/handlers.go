package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/chat"
	"docuchat/internal/extract"
	"docuchat/internal/gateway"
	"docuchat/internal/markup"
	"docuchat/internal/models"
)

// Handler wires HTTP routes to the chat orchestrator. All decisions live
// in the orchestrator; the handlers only translate requests and errors.
type Handler struct {
	orch *chat.Orchestrator
}

// NewHandler constructs a Handler instance.
func NewHandler(orch *chat.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/health", h.health)
	api.POST("/attachments", h.uploadAttachment)
	api.GET("/attachments/current", h.currentAttachment)
	api.GET("/attachments/current/file", h.attachmentFile)
	api.DELETE("/attachments/current", h.removeAttachment)
	api.POST("/chat", h.sendMessage)
	api.GET("/conversation", h.getConversation)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": h.orch.State()})
}

func (h *Handler) uploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	mediaType := file.Header.Get("Content-Type")
	// Reject oversized and mistyped uploads before buffering the body;
	// the orchestrator re-validates against the bytes it receives.
	if err := models.ValidateUpload(mediaType, file.Size); err != nil {
		h.writeUploadError(c, err)
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
		return
	}

	analysis, att, err := h.orch.Upload(c.Request.Context(), file.Filename, mediaType, data)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"attachment": att,
		"analysis":   messagePayload(analysis),
	})
}

func (h *Handler) currentAttachment(c *gin.Context) {
	att := h.orch.CurrentAttachment()
	if att == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attachment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachment": att})
}

func (h *Handler) attachmentFile(c *gin.Context) {
	att := h.orch.CurrentAttachment()
	if att == nil || att.FilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attachment"})
		return
	}
	c.Header("Content-Type", att.MediaType)
	c.File(att.FilePath)
}

func (h *Handler) removeAttachment(c *gin.Context) {
	h.orch.RemoveAttachment()
	c.Status(http.StatusNoContent)
}

type chatRequest struct {
	Content string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userMsg, aiMsg, err := h.orch.Send(c.Request.Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrBusy):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "another request is still running, please wait"})
		case errors.Is(err, chat.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case errors.Is(err, gateway.ErrServiceUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.orch.LastError()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_message": messagePayload(userMsg),
		"ai_message":   messagePayload(aiMsg),
	})
}

func (h *Handler) getConversation(c *gin.Context) {
	msgs := h.orch.Messages()
	payload := make([]gin.H, 0, len(msgs))
	for _, msg := range msgs {
		payload = append(payload, messagePayload(msg))
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    h.orch.State(),
		"error":    h.orch.LastError(),
		"messages": payload,
	})
}

func (h *Handler) writeUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "another request is still running, please wait"})
	default:
		if exErr, ok := extract.AsError(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": exErr.UserMessage()})
			return
		}
		msg := strings.TrimSpace(h.orch.LastError())
		if msg == "" {
			msg = "upload failed"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func messagePayload(msg *models.Message) gin.H {
	payload := gin.H{
		"id":           msg.ID,
		"role":         msg.Role,
		"content":      msg.Content,
		"content_html": markup.Render(msg.Content),
		"created_at":   msg.CreatedAt,
	}
	if len(msg.Attachments) > 0 {
		payload["attachments"] = msg.Attachments
	}
	return payload
}
