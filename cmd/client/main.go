// chatrelay CLI - interactive terminal client.
//
// Connects a WebSocket listener to a room, prints everything the server
// pushes (history first, then live messages), and posts each line typed on
// stdin through the request ingress.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type message struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Room      string    `json:"room"`
	Text      string    `json:"text"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"ts"`
}

func main() {
	server := flag.String("server", "http://localhost:8080", "chatrelay server base URL")
	user := flag.String("user", "john", "user name")
	room := flag.String("room", "default", "room to join")
	flag.Parse()

	wsURL, err := wsEndpoint(*server, *user, *room)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid server URL:", err)
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s as %s. Empty line to quit.\n", *room, *user)

	go listen(conn)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			return
		}
		if err := post(*server, *user, *room, line); err != nil {
			fmt.Fprintln(os.Stderr, "send failed:", err)
		}
	}
}

func listen(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			fmt.Fprintln(os.Stderr, "\nconnection closed:", err)
			os.Exit(0)
		}

		var msg message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			fmt.Printf("\n[%s] %s\n> ", env.Type, string(env.Data))
			continue
		}

		prefix := ""
		if env.Type == "history" {
			prefix = "(history) "
		}
		fmt.Printf("\n%s[%s] %s: %s\n> ",
			prefix, msg.Timestamp.Format("15:04:05"), msg.User, msg.Text)
	}
}

func post(server, user, room, text string) error {
	body, err := json.Marshal(map[string]string{
		"user": user,
		"room": room,
		"text": text,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(server+"/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func wsEndpoint(server, user, room string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("user", user)
	q.Set("room", room)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
