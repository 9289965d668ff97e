package gametest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Server is a fake duel server bound to an httptest listener.
type Server struct {
	httpSrv  *httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	rooms      map[string]*room
	denyStart  bool
	denyMsg    string
	actionWake chan struct{}
}

type room struct {
	id      string
	keys    []string
	conns   map[*websocket.Conn]string // live conns by presented key ("" = anonymous)
	total   int                        // cumulative conns ever opened
	actions []json.RawMessage
}

// NewServer starts the fake server.
func NewServer() *Server {
	s := &Server{
		rooms:      make(map[string]*room),
		actionWake: make(chan struct{}, 16),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/create_room", s.handleCreateRoom).Methods("POST")
	r.HandleFunc("/api/join_room/{id}", s.handleJoinRoom).Methods("POST")
	r.HandleFunc("/api/start_game/{id}", s.handleStartGame).Methods("POST")
	r.HandleFunc("/api/game_state/{id}", s.handleGameState).Methods("GET")
	r.HandleFunc("/ws/{id}", s.handleWS)

	s.httpSrv = httptest.NewServer(r)
	return s
}

// URL returns the base http URL of the fake server.
func (s *Server) URL() string { return s.httpSrv.URL }

// Close shuts the server down and drops all live channels.
func (s *Server) Close() {
	s.mu.Lock()
	for _, rm := range s.rooms {
		for conn := range rm.conns {
			conn.Close()
		}
	}
	s.mu.Unlock()
	s.httpSrv.Close()
}

// AddRoom registers a room with a fixed id and returns it for convenience.
func (s *Server) AddRoom(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = &room{id: id, conns: make(map[*websocket.Conn]string)}
	return id
}

// DenyStart makes start_game answer success=false with the given message.
// An empty message still denies, exercising the client's fallback text.
func (s *Server) DenyStart(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denyStart = true
	s.denyMsg = message
}

// AllowStart lets start_game succeed again.
func (s *Server) AllowStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denyStart = false
	s.denyMsg = ""
}

// Push broadcasts a frame to every live channel in the room.
func (s *Server) Push(roomID string, frame interface{}) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return nil
	}
	for conn := range rm.conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
	return nil
}

// PushRaw broadcasts a raw payload, valid JSON or not.
func (s *Server) PushRaw(roomID string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return
	}
	for conn := range rm.conns {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}

// OpenConns reports the number of currently live channels in the room.
func (s *Server) OpenConns(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm := s.rooms[roomID]; rm != nil {
		return len(rm.conns)
	}
	return 0
}

// TotalConns reports how many channels were ever opened to the room.
func (s *Server) TotalConns(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm := s.rooms[roomID]; rm != nil {
		return rm.total
	}
	return 0
}

// ConnKeys returns the player keys presented by the live channels, in no
// particular order. Anonymous channels show as "".
func (s *Server) ConnKeys(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	if rm := s.rooms[roomID]; rm != nil {
		for _, k := range rm.conns {
			keys = append(keys, k)
		}
	}
	return keys
}

// Actions returns a copy of the frames clients have sent to the room.
func (s *Server) Actions(roomID string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return nil
	}
	out := make([]json.RawMessage, len(rm.actions))
	copy(out, rm.actions)
	return out
}

// WaitAction blocks until the room has at least n recorded actions or the
// timeout passes; it reports whether the count was reached.
func (s *Server) WaitAction(roomID string, n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if len(s.Actions(roomID)) >= n {
			return true
		}
		select {
		case <-s.actionWake:
		case <-deadline:
			return len(s.Actions(roomID)) >= n
		}
	}
}

// WaitConns blocks until the room has exactly want live channels or the
// timeout passes.
func (s *Server) WaitConns(roomID string, want int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.OpenConns(roomID) == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.OpenConns(roomID) == want
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()[:8]
	s.AddRoom(id)
	writeJSON(w, http.StatusOK, map[string]string{"room_id": id})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	s.mu.Lock()
	rm := s.rooms[roomID]
	if rm == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
		return
	}
	if len(rm.keys) >= 2 {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Room is full"})
		return
	}
	key := uuid.NewString()
	rm.keys = append(rm.keys, key)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"player_key": key})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	deny, denyMsg := s.denyStart, s.denyMsg
	_, known := s.rooms[mux.Vars(r)["id"]]
	s.mu.Unlock()

	if !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
		return
	}
	if deny {
		reply := map[string]interface{}{"success": false}
		if denyMsg != "" {
			reply["message"] = denyMsg
		}
		writeJSON(w, http.StatusOK, reply)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, known := s.rooms[mux.Vars(r)["id"]]
	s.mu.Unlock()

	if !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"round":        1,
		"current_turn": 0,
		"players":      []map[string]interface{}{{"hand": []string{}, "score": 0}, {"hand": []string{}, "score": 0}},
		"discard_pile": []string{},
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	key := r.URL.Query().Get("player_key")

	s.mu.Lock()
	rm := s.rooms[roomID]
	s.mu.Unlock()
	if rm == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	rm.conns[conn] = key
	rm.total++
	if key == "" {
		// Anonymous connect claims a seat, like the real server.
		issued := uuid.NewString()
		rm.keys = append(rm.keys, issued)
		_ = conn.WriteJSON(map[string]string{
			"type":       "room_joined",
			"player_key": issued,
			"room_id":    roomID,
		})
	}
	s.mu.Unlock()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			delete(rm.conns, conn)
			s.mu.Unlock()
			conn.Close()
			return
		}

		s.mu.Lock()
		rm.actions = append(rm.actions, json.RawMessage(append([]byte(nil), payload...)))
		s.mu.Unlock()

		select {
		case s.actionWake <- struct{}{}:
		default:
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
