package api

import (
	"net/http"

	"go-dialog/internal/dialogue"
	"go-dialog/internal/facts"

	"github.com/gin-gonic/gin"
)

type MessageRequest struct {
	Text          string `json:"text"`
	ForceQuestion bool   `json:"force_question"`
}

type MessageResponse struct {
	Replies []string `json:"replies"`
}

// StartChatHandler opens the session and returns the greeting, if any.
// POST /chat/:interlocutor/start
func StartChatHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		interlocutor := c.Param("interlocutor")
		if err := engine.StartConversation(c.Request.Context(), interlocutor); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to start conversation"}})
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Replies: engine.DrainPhrases(interlocutor)})
	}
}

// ChatMessageHandler runs one dialogue turn and returns the bot replies.
// A failed turn still answers 200: the engine queues its fallback reply
// and the conversation goes on.
// POST /chat/:interlocutor/message
func ChatMessageHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		interlocutor := c.Param("interlocutor")
		var req MessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Text required"}})
			return
		}
		_ = engine.PushPhrase(c.Request.Context(), interlocutor, req.Text, false, req.ForceQuestion)
		c.JSON(http.StatusOK, MessageResponse{Replies: engine.DrainPhrases(interlocutor)})
	}
}

// ChatRepliesHandler drains replies queued since the last call.
// GET /chat/:interlocutor/replies
func ChatRepliesHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		interlocutor := c.Param("interlocutor")
		c.JSON(http.StatusOK, MessageResponse{Replies: engine.DrainPhrases(interlocutor)})
	}
}

// ChatFactsHandler lists the facts remembered about the interlocutor.
// GET /chat/:interlocutor/facts
func ChatFactsHandler(store facts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		interlocutor := c.Param("interlocutor")
		list, err := store.Enumerate(c.Request.Context(), interlocutor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to enumerate facts"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"facts": list})
	}
}
