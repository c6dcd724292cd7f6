package websocket

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carebridge-project/carebridge-multi-agent/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local observability endpoint
	},
}

// LogServer handles WebSocket connections and broadcasts log messages
type LogServer struct {
	hub    *Hub
	port   int
	server *http.Server
	mu     sync.Mutex
}

// NewLogServer creates a new LogServer instance
func NewLogServer(port int) *LogServer {
	return &LogServer{
		hub:  NewHub(),
		port: port,
	}
}

// Start binds the listener and begins serving. A bind failure is
// returned to the caller so the process can run without log streaming.
func (s *LogServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{Handler: mux}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			fmt.Printf("WebSocket server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the WebSocket server
func (s *LogServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// BroadcastLog sends a plain log message to all connected clients
func (s *LogServer) BroadcastLog(message string) {
	s.BroadcastAgentLog(&types.AgentLog{
		Type:      "log",
		From:      "system",
		Content:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// BroadcastAgentLog sends a structured agent log to all connected clients
func (s *LogServer) BroadcastAgentLog(entry *types.AgentLog) {
	msg := types.WebSocketMessage{
		Type:      "log",
		Payload:   entry,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if data, err := json.Marshal(msg); err == nil {
		s.hub.Broadcast(data)
	}
}

func (s *LogServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("Failed to upgrade connection: %v\n", err)
		return
	}

	client := NewClient(s.hub, conn)
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
