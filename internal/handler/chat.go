package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"evinburada/internal/model"
	"evinburada/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles conversational search requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Start handles POST /api/v1/sessions
func (h *ChatHandler) Start(c *gin.Context) {
	resp, err := h.chatService.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /api/v1/sessions/:id
func (h *ChatHandler) Get(c *gin.Context) {
	sess, err := h.chatService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Send handles POST /api/v1/sessions/:id/messages
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.chatService.Send(c.Request.Context(), c.Param("id"), req.Message, req.Sort)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SendStream handles POST /api/v1/sessions/:id/messages/stream - SSE streaming turn
func (h *ChatHandler) SendStream(c *gin.Context) {
	var req model.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	id := c.Param("id")
	sendSSE(c, "start", map[string]any{"session_id": id, "message": req.Message})
	flusher.Flush()

	resp, err := h.chatService.SendStream(c.Request.Context(), id, req.Message, req.Sort, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return c.Request.Context().Err()
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "results", resp)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// Location handles POST /api/v1/sessions/:id/location
func (h *ChatHandler) Location(c *gin.Context) {
	var req model.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.chatService.ProvideLocation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps service errors to HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrListingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTurnInFlight), errors.Is(err, service.ErrNoPendingLocation):
		status = http.StatusConflict
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrInvalidLocation):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
