package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Run events over WebSocket with graphql-transport-ws style framing:
// connection_init/connection_ack, subscribe {runId}, next, complete, ping/pong.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	RunID string `json:"runId"`
}

// RunsWSHandler handles /v1/runs/ws
func (s *Server) RunsWSHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	type sub struct {
		runID string
		ch    chan SSEEvent
	}
	subs := map[string]sub{}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	// gorilla connections allow one concurrent writer
	var wmu sync.Mutex
	write := func(v any) error {
		wmu.Lock()
		defer wmu.Unlock()
		return conn.WriteJSON(v)
	}
	done := make(chan struct{})
	defer close(done)
	var fanout sync.WaitGroup

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						if err := write(wsMessage{Type: "ping"}); err != nil {
							return
						}
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			var pl subscribePayload
			_ = json.Unmarshal(msg.Payload, &pl)
			if pl.RunID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"runId required"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			if _, dup := subs[msg.ID]; dup {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"subscription id in use"}`)})
				continue
			}
			ch := s.Broker.Subscribe(pl.RunID)
			subs[msg.ID] = sub{runID: pl.RunID, ch: ch}
			fanout.Add(1)
			go func(id string, c chan SSEEvent) {
				defer fanout.Done()
				for evt := range c {
					payload, _ := json.Marshal(map[string]any{"type": evt.Type, "data": evt.Data})
					_ = write(wsMessage{Type: "next", ID: id, Payload: payload})
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)
		case "complete":
			if s0, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(s0.runID, s0.ch)
				delete(subs, msg.ID)
			}
		}
	}
	for id, s0 := range subs {
		s.Broker.Unsubscribe(s0.runID, s0.ch)
		delete(subs, id)
	}
	fanout.Wait()
}
