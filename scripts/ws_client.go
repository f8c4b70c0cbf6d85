// Package main subscribes to run events over WebSocket, starts an async
// solve and prints events until that run finishes.
//
//	go run ./scripts/ws_client.go -addr localhost:8080 -algorithm lns -token $(binrent token --role admin)
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type runEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := flag.String("addr", "localhost:"+port, "API host:port")
	algorithm := flag.String("algorithm", "grasp_large_search", "heuristic to run")
	seed := flag.Uint64("seed", 2, "generator seed")
	token := flag.String("token", "", "bearer token (hmac mode)")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after")
	flag.Parse()

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	if *token != "" {
		hdr.Set("Authorization", "Bearer "+*token)
	}
	post := func(path string, body any) *http.Response {
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "http://"+*addr+path, bytes.NewReader(b))
		req.Header = hdr.Clone()
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatal(err)
		}
		return resp
	}

	resp := post("/v1/instances/generate", map[string]any{"bins": 25, "binTypes": 9, "compulsory": 9, "optional": 12, "seed": *seed})
	var inst json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&inst); err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/v1/runs/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	must := func(m wsMessage) {
		if err := c.WriteJSON(m); err != nil {
			log.Fatal(err)
		}
	}
	must(wsMessage{Type: "connection_init"})
	must(wsMessage{Type: "subscribe", ID: "runs", Payload: json.RawMessage(`{"runId":"*"}`)})
	// the pong confirms the subscription is registered
	must(wsMessage{Type: "ping"})
	_ = c.SetReadDeadline(time.Now().Add(*timeout))
	for {
		var m wsMessage
		if err := c.ReadJSON(&m); err != nil {
			log.Fatal("read:", err)
		}
		if m.Type == "pong" {
			break
		}
	}

	resp = post("/v1/solve?async=true", map[string]any{"instance": inst, "algorithm": *algorithm, "options": map[string]any{"workers": 4}})
	var run struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&run)
	_ = resp.Body.Close()
	log.Printf("solve -> %s run %s", resp.Status, run.ID)

	for {
		var m wsMessage
		if err := c.ReadJSON(&m); err != nil {
			log.Fatal("read:", err)
		}
		if m.Type != "next" {
			continue
		}
		var evt runEvent
		if err := json.Unmarshal(m.Payload, &evt); err != nil {
			continue
		}
		fmt.Printf("%-14s %v\n", evt.Type, evt.Data)
		if evt.Data["runId"] == run.ID && (evt.Type == "run.completed" || evt.Type == "run.failed") {
			must(wsMessage{Type: "complete", ID: "runs"})
			return
		}
	}
}
