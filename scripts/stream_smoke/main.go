// Command stream_smoke connects to a running server's room stream, sends a
// message over the REST API, and prints frames as they arrive. Manual
// smoke check for the live delivery path.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	wsBase := flag.String("ws", "ws://localhost:8080", "server WebSocket base URL")
	room := flag.String("room", "smoke-room", "room id")
	sender := flag.String("sender", "smoke-user", "sender id")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("%s/api/rooms/%s/stream", *wsBase, *room), nil)
	if err != nil {
		log.Fatalf("dial stream: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	body, _ := json.Marshal(map[string]string{
		"room_id":   *room,
		"sender_id": *sender,
		"content":   "smoke " + time.Now().Format(time.RFC3339),
	})
	resp, err := http.Post(*base+"/api/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("send message: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("send message: status %d", resp.StatusCode)
	}

	var frame map[string]any
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		log.Fatalf("read frame: %v", err)
	}
	fmt.Printf("received: %v\n", frame)
}
