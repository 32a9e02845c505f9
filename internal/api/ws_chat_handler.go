package api

import (
	"log"
	"net/http"

	"go-dialog/internal/auth"
	"go-dialog/internal/config"
	"go-dialog/internal/dialogue"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Text          string `json:"text"`
	ForceQuestion bool   `json:"force_question"`
}

type wsOutbound struct {
	Reply string `json:"reply"`
}

// WSChatHandler runs a dialogue over a websocket: one inbound frame per
// human utterance, one outbound frame per bot reply. Auth is carried in
// the token query parameter since browsers cannot set headers on
// websocket upgrades.
// GET /ws/chat/:interlocutor?token=...
func WSChatHandler(cfg *config.Config, engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		claims, err := auth.ParseJWT(cfg.Server.JWTSecret, tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}

		interlocutor := c.Param("interlocutor")
		if interlocutor == "" {
			interlocutor = claims.Interlocutor
		}
		if interlocutor == "" {
			interlocutor = claims.Username
		}

		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WSChat] upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		ctx := c.Request.Context()
		if err := engine.StartConversation(ctx, interlocutor); err != nil {
			log.Printf("[WSChat] start conversation: %v", err)
		}
		for _, reply := range engine.DrainPhrases(interlocutor) {
			if err := conn.WriteJSON(wsOutbound{Reply: reply}); err != nil {
				return
			}
		}

		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[WSChat] read error for %s: %v", interlocutor, err)
				}
				return
			}
			if in.Text == "" {
				continue
			}
			_ = engine.PushPhrase(ctx, interlocutor, in.Text, false, in.ForceQuestion)
			for _, reply := range engine.DrainPhrases(interlocutor) {
				if err := conn.WriteJSON(wsOutbound{Reply: reply}); err != nil {
					return
				}
			}
		}
	}
}
