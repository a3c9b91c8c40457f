// Command gatewaycheck verifies gateway connectivity: an optional HTTP reply and a
// short websocket observation window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-duel/internal/gateway"
)

var (
	room    = flag.String("room", "", "send a test reply to this room")
	observe = flag.Duration("observe", 10*time.Second, "how long to print websocket messages")
)

func main() {
	flag.Parse()
	baseURL := os.Getenv("GATEWAY_BASE_URL")
	wsURL := os.Getenv("GATEWAY_WS_URL")
	if baseURL == "" {
		log.Fatal("GATEWAY_BASE_URL is required")
	}
	headers := gateway.StaticHeaders(os.Getenv("X_USER_ID"), os.Getenv("X_USER_EMAIL"), os.Getenv("X_SESSION_ID"))

	if *room != "" {
		client := gateway.NewClient(baseURL, gateway.WithHeaderProvider(headers), gateway.WithTimeout(8*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.SendMessage(ctx, *room, "gatewaycheck "+time.Now().Format(time.RFC3339))
		cancel()
		if err != nil {
			log.Printf("/reply error: %v", err)
		} else {
			log.Printf("/reply ok: room=%s", *room)
		}
	}

	if wsURL == "" {
		log.Println("GATEWAY_WS_URL not set; skipping WS check")
		return
	}

	ws := gateway.NewWebSocket(wsURL, 0)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state gateway.WebSocketState) {
		log.Printf("WS state: %s", state)
	})
	ws.OnMessage(func(msg *gateway.Message) {
		fmt.Printf("WS msg room=%s from=%s text=%q\n", msg.Room, msg.SenderName(), msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}
	time.Sleep(*observe)

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = ws.Close(sctx)
}
