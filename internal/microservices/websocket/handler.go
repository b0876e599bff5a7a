package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer in front of the API
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades an authenticated request and joins the channels listed
// in the comma separated "channels" query parameter.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		channels, denied := parseChannels(c.Query("channels"), userID)
		if denied != "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "channel not allowed: " + denied})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the HTTP error
			return
		}

		client := NewClient(uuid.NewString(), userID, channels, conn, hub)
		if !hub.register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

func parseChannels(raw, userID string) ([]string, string) {
	var channels []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if !AllowedChannel(name, userID) {
			return nil, name
		}
		seen[name] = true
		channels = append(channels, name)
	}
	return channels, ""
}
