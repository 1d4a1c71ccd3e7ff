package v1

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
	"github.com/gin-gonic/gin"
)

type startConversationRequest struct {
	Doctor string `json:"doctor"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) startConversation(c *gin.Context) {
	var req startConversationRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	conv, err := h.svc.Chat.StartConversation(c.Request.Context(), callerFrom(c), &chat.StartConversationCommand{Doctor: req.Doctor})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, conv)
}

func (h *Handler) listConversations(c *gin.Context) {
	convs, err := h.svc.Chat.Conversations(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, convs)
}

func (h *Handler) getConversation(c *gin.Context) {
	conv, err := h.svc.Chat.Conversation(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, conv)
}

// sendMessage answers 202: the doctor's reply arrives later.
func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	conv, err := h.svc.Chat.Send(c.Request.Context(), callerFrom(c), &chat.SendMessageCommand{
		ConversationID: c.Param("id"),
		Text:           req.Text,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondAccepted(c, conv)
}
