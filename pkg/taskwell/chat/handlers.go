package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the conversational endpoint. It holds no store access; every
// action flows through the tool registry to the backend API.
type Handler struct {
	provider Provider
	registry *Registry
	logger   *zap.Logger
}

// NewHandler creates a chat handler
func NewHandler(provider Provider, registry *Registry, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, registry: registry, logger: logger}
}

// ChatRequest is an incoming conversation turn
type ChatRequest struct {
	Message string    `json:"message" binding:"required"`
	History []Message `json:"history"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles one conversation turn. The caller's bearer token is forwarded
// to the backend for every tool call, so the chatbot can only ever act as the
// authenticated user.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	reply, err := h.provider.Chat(c.Request.Context(), req.History, req.Message, h.registry.Executor(token))
	if err != nil {
		h.logger.Error("chat provider failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable right now. Please try again."})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RegisterRoutes registers the chat endpoint
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.Chat)
}
