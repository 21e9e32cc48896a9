package ws

import (
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/gorilla/websocket"

    "github.com/zaqqye/ujian_backend_v1/internal/models"
)

var upgrader = websocket.Upgrader{
    CheckOrigin: func(r *http.Request) bool {
        // Allow all origins; rely on JWT auth.
        return true
    },
}

// MonitoringHandler upgrades an admin/pengawas connection and streams hub
// events to it until the client disconnects.
func MonitoringHandler(hub *Hub) gin.HandlerFunc {
    return func(c *gin.Context) {
        uVal, ok := c.Get("user")
        if !ok {
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
            return
        }
        user := uVal.(models.User)
        role := strings.ToLower(user.Role)
        if role != "admin" && role != "pengawas" {
            c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
            return
        }

        conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
        if err != nil {
            return
        }
        sub := hub.Subscribe()

        go writePump(conn, sub)
        readPump(conn)
        hub.Unsubscribe(sub)
        conn.Close()
    }
}

func readPump(conn *websocket.Conn) {
    conn.SetReadLimit(512)
    conn.SetReadDeadline(time.Now().Add(pongWait))
    conn.SetPongHandler(func(string) error {
        conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })
    for {
        if _, _, err := conn.ReadMessage(); err != nil {
            return
        }
    }
}

func writePump(conn *websocket.Conn, sub *Subscriber) {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        conn.Close()
    }()
    for {
        select {
        case msg, ok := <-sub.Messages():
            conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            w, err := conn.NextWriter(websocket.TextMessage)
            if err != nil {
                return
            }
            if _, err := w.Write(msg); err != nil {
                return
            }
            if err := w.Close(); err != nil {
                return
            }
        case <-ticker.C:
            conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
