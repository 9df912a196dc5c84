// A bare-bones terminal client for poking at a running server. It joins a
// lobby, prints every envelope it receives, and forwards stdin lines as
// protocol messages:
//
//	ready            toggle ready
//	class <id>       pick a class
//	color <name>     pick a color
//	start            ask the host to start (only works if you are the host)
//	move <q> <r>     request a move
//	skip | defend    turn actions
//	say <text>       chat
//	sync             request a full state sync
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/ajmarsh/hexfront/internal/hexmap"
	"github.com/ajmarsh/hexfront/internal/protocol"
)

const (
	dialRetries = 5
	retryDelay  = 2 * time.Second
)

func main() {
	host := flag.String("host", "localhost", "server host")
	port := flag.Int("port", 8080, "server port")
	code := flag.String("code", "", "lobby join code")
	name := flag.String("name", "player", "display name")
	flag.Parse()

	if *code == "" {
		fmt.Fprintln(os.Stderr, "a lobby code is required (-code)")
		os.Exit(2)
	}

	url := fmt.Sprintf("ws://%s:%d/ws?code=%s", *host, *port, *code)
	conn, err := dial(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx := context.Background()
	if err := send(ctx, conn, protocol.TypeJoinRequest, protocol.JoinRequest{Name: *name}); err != nil {
		fmt.Fprintln(os.Stderr, "join:", err)
		os.Exit(1)
	}

	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, "connection closed:", err)
				os.Exit(0)
			}
			printEnvelope(data)
		}
	}()

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if err := dispatch(ctx, conn, sc.Text()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func dial(url string) (*websocket.Conn, error) {
	var lastErr error
	for i := 0; i < dialRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, _, err := websocket.Dial(ctx, url, nil)
		cancel()
		if err == nil {
			return conn, nil
		}
		lastErr = err
		fmt.Fprintf(os.Stderr, "dial failed (%d/%d): %v\n", i+1, dialRetries, err)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("could not reach %s: %w", url, lastErr)
}

func dispatch(ctx context.Context, conn *websocket.Conn, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "ready":
		return send(ctx, conn, protocol.TypeSetReady, protocol.SetReady{Ready: true})
	case "unready":
		return send(ctx, conn, protocol.TypeSetReady, protocol.SetReady{Ready: false})
	case "class":
		if len(fields) < 2 {
			return fmt.Errorf("usage: class <id>")
		}
		return send(ctx, conn, protocol.TypeSelectClass, protocol.SelectClass{ClassID: fields[1]})
	case "color":
		if len(fields) < 2 {
			return fmt.Errorf("usage: color <name>")
		}
		return send(ctx, conn, protocol.TypeSelectColor, protocol.SelectColor{Color: fields[1]})
	case "start":
		return send(ctx, conn, protocol.TypeStartMatch, protocol.StartMatch{})
	case "move":
		if len(fields) < 3 {
			return fmt.Errorf("usage: move <q> <r>")
		}
		q, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("bad q: %w", err)
		}
		r, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad r: %w", err)
		}
		return send(ctx, conn, protocol.TypeMoveRequest, protocol.MoveRequest{Destination: hexmap.Cube(q, r)})
	case "skip", "defend", "attack":
		return send(ctx, conn, protocol.TypeTurnAction, protocol.TurnAction{Action: fields[0]})
	case "say":
		return send(ctx, conn, protocol.TypeChat, protocol.Chat{Text: strings.TrimSpace(strings.TrimPrefix(line, "say"))})
	case "sync":
		return send(ctx, conn, protocol.TypeResyncRequest, protocol.ResyncRequest{})
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func send(ctx context.Context, conn *websocket.Conn, t protocol.MessageType, payload any) error {
	env, err := protocol.NewEnvelope(t, "", payload)
	if err != nil {
		return err
	}
	data, err := protocol.Encode(env)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, data)
}

func printEnvelope(data []byte) {
	env, _, err := protocol.DecodeEnvelope(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad frame: %v\n", err)
		return
	}
	var pretty json.RawMessage = env.Payload
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil || len(env.Payload) == 0 {
		fmt.Printf("<- %s\n", env.Type)
		return
	}
	fmt.Printf("<- %s %s\n", env.Type, out)
}
