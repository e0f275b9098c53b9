package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewMux registers the HTTP surface for a hub: health, diagnostics, join,
// and the WebSocket endpoint.
func NewMux(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(hub.DiagnosticsSnapshot())
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		join := hub.Join(r.URL.Query().Get("archetype"))
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}

		sub, playerID, snapshot := hub.Subscribe(conn)

		initial := stateMessage{Type: "state", Snapshot: snapshot, ServerTime: time.Now().UnixMilli()}
		data, err := json.Marshal(initial)
		if err != nil {
			log.Printf("failed to marshal initial state for %s: %v", playerID, err)
			hub.Disconnect(playerID)
			return
		}
		sub.mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			sub.mu.Unlock()
			hub.Disconnect(playerID)
			return
		}
		sub.mu.Unlock()

		readClientMessages(hub, sub, conn, playerID)
	})

	return mux
}

// readClientMessages pumps the socket until it closes, translating each
// message into hub commands.
func readClientMessages(hub *Hub, sub *subscriber, conn *websocket.Conn, playerID string) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(playerID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "input":
			hub.UpdateIntent(playerID, msg.DX, msg.DY)
		case "aim":
			hub.UpdateAim(playerID, msg.X, msg.Y)
		case "press":
			if !hub.PressAction(playerID, msg.Slot) {
				log.Printf("ignoring press with unknown slot %q from %s", msg.Slot, playerID)
			}
		case "release":
			if !hub.ReleaseAction(playerID, msg.Slot) {
				log.Printf("ignoring release with unknown slot %q from %s", msg.Slot, playerID)
			}
		case "restart":
			hub.Restart()
		case "heartbeat":
			now := time.Now()
			rtt := hub.UpdateHeartbeat(playerID, now, msg.SentAt)
			ack := heartbeatMessage{
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			data, err := json.Marshal(ack)
			if err != nil {
				log.Printf("failed to marshal heartbeat ack for %s: %v", playerID, err)
				continue
			}
			sub.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				sub.mu.Unlock()
				hub.Disconnect(playerID)
				return
			}
			sub.mu.Unlock()
		default:
			log.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}
