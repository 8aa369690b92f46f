package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Mefoolyhi/Nex/internal/game"
	"github.com/Mefoolyhi/Nex/internal/logger"
)

const writeWait = 5 * time.Second

type wsClient struct {
	gameID string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

type wsMessage struct {
	Type   string `json:"type"`
	Player string `json:"player"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(c *gin.Context) {
	gameID := c.Query("gameId")
	g, ok := s.manager.GetGame(gameID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrGameNotFound.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, 16),
		server: s,
	}
	s.register(client)
	client.sendJSON(statePayload(g))

	go client.writePump()
	go client.readPump()
}

func (s *Server) register(c *wsClient) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	clients, ok := s.connections[c.gameID]
	if !ok {
		clients = make(map[*wsClient]struct{})
		s.connections[c.gameID] = clients
	}
	clients[c] = struct{}{}
}

func (s *Server) unregister(c *wsClient) {
	s.connMu.Lock()
	if clients, ok := s.connections[c.gameID]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(s.connections, c.gameID)
		}
	}
	s.connMu.Unlock()
	c.conn.Close()
}

func (s *Server) closeConnections() {
	s.connMu.RLock()
	var all []*wsClient
	for _, clients := range s.connections {
		for c := range clients {
			all = append(all, c)
		}
	}
	s.connMu.RUnlock()
	for _, c := range all {
		s.unregister(c)
	}
}

func (c *wsClient) writePump() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *wsClient) readPump() {
	defer c.server.unregister(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(gin.H{"type": "error", "message": "malformed message"})
			continue
		}
		if msg.Type != "move" {
			continue
		}
		_, err = c.server.submit(game.Move{
			GameID: c.gameID,
			Player: msg.Player,
			Row:    msg.Row,
			Col:    msg.Col,
		})
		if err != nil {
			logger.With(logrus.Fields{"game_id": c.gameID, "player": msg.Player}).WithError(err).Debug("ws move refused")
			c.sendJSON(gin.H{"type": "error", "message": err.Error()})
		}
	}
}

func statePayload(g game.GameView) gin.H {
	return gin.H{"type": "state", "game": newGameView(g)}
}

func (s *Server) broadcastState(g game.GameView) {
	data, err := json.Marshal(statePayload(g))
	if err != nil {
		return
	}
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	for client := range s.connections[g.ID] {
		select {
		case client.send <- data:
		default:
		}
	}
}

// sendJSON drops the message when the client is not keeping up.
func (c *wsClient) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.server.connMu.RLock()
	defer c.server.connMu.RUnlock()
	if _, ok := c.server.connections[c.gameID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
