package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/service"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// ChatbotHandler exposes the conversational endpoint.
type ChatbotHandler struct {
	chatbot *service.ChatbotService
}

// NewChatbotHandler constructs ChatbotHandler.
func NewChatbotHandler(chatbot *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot}
}

// Ask answers one chatbot turn for the authenticated caller.
func (h *ChatbotHandler) Ask(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chatbot payload"))
		return
	}

	res, err := h.chatbot.Ask(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
