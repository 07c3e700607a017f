package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"crypto-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const socketWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type socketCommand struct {
	Action string `json:"action"`
	CoinID string `json:"coin_id"`
}

// DashboardSocket godoc
// @Summary      Dashboard stream
// @Description  Upgrades to a websocket. Clients send {"action":"select","coin_id":"..."} or {"action":"refresh"}; the server pushes session snapshots.
// @Tags         dashboard
// @Router       /ws/dashboard [get]
func (h *Handler) DashboardSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := h.newSession()
	snapshots, unsubscribe := session.Subscribe()
	defer unsubscribe()
	defer session.Close()

	log.Printf("dashboard %s connected from %s", session.ID(), c.ClientIP())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for snap := range snapshots {
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				log.Printf("dashboard %s write: %v", session.ID(), err)
				cancel()
				return
			}
		}
	}()

	go session.LoadListing(ctx)

	for {
		var cmd socketCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("dashboard %s read: %v", session.ID(), err)
			}
			break
		}
		switch cmd.Action {
		case "select":
			go func(id string) {
				if err := session.Select(ctx, id); errors.Is(err, domain.ErrUnknownCoin) {
					log.Printf("dashboard %s: %v", session.ID(), err)
				}
			}(cmd.CoinID)
		case "refresh":
			go session.Refresh(ctx)
		case "reload":
			go session.LoadListing(ctx)
		default:
			log.Printf("dashboard %s: unknown action %q", session.ID(), cmd.Action)
		}
	}

	cancel()
	session.Close()
	<-writerDone
	log.Printf("dashboard %s disconnected", session.ID())
}
