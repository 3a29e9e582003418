package handler

import (
	"net/http"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/service"
	"blood-request-coordinator/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

// Chat answers the latest message of a conversation
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), req.Messages)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"reply": models.ChatMessage{Role: models.ChatRoleModel, Content: reply},
	})
}
