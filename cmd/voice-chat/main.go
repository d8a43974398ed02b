// voice-chat - Interactive terminal client for Sayna voice-chat rooms
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SaynaAI/examples/clients/go/voicechat"
)

func main() {
	serverURL := os.Getenv("VOICE_AGENT_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	room := os.Getenv("VOICE_CHAT_ROOM")
	if room == "" {
		room = "demo"
	}

	name := os.Getenv("VOICE_CHAT_NAME")
	if name == "" {
		name = "guest"
	}
	identity := name + "-" + uuid.NewString()[:8]

	session := voicechat.NewSession(voicechat.SessionConfig{
		TokenEndpoint: serverURL + "/start",
		Room:          room,
		Name:          name,
		Identity:      identity,
		OnUpdate:      printTranscript,
		OnSendError: func(entryID string, err error) {
			fmt.Fprintf(os.Stderr, "send failed (%s): %v  -- /retry %s\n", shortID(entryID), err, shortID(entryID))
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := session.Connect(ctx)
	cancel()
	exitOnError(err)
	defer session.Disconnect()

	if err := session.EnableMicrophone(); err != nil {
		fmt.Fprintln(os.Stderr, "microphone unavailable, continuing text-only:", err)
	}

	fmt.Printf("Connected to room %q as %s. Type a message, /retry <id> or /quit.\n", room, name)

	lastFailed := ""
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return

		case strings.HasPrefix(line, "/retry"):
			target := strings.TrimSpace(strings.TrimPrefix(line, "/retry"))
			if target == "" {
				target = lastFailed
			}
			if target == "" {
				fmt.Fprintln(os.Stderr, "nothing to retry")
				continue
			}
			target = resolveID(session, target)
			if err := session.Retry(context.Background(), target); err != nil {
				fmt.Fprintln(os.Stderr, "retry:", err)
			}

		default:
			id, err := session.Send(context.Background(), line)
			if err != nil {
				fmt.Fprintln(os.Stderr, "send:", err)
				continue
			}
			lastFailed = id
		}
	}
}

// printTranscript redraws the conversation after every change.
func printTranscript(entries []voicechat.Entry) {
	fmt.Print("\033[2J\033[H")
	for _, e := range entries {
		ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
		label := string(e.Role)
		if e.SenderID != "" && e.Role != voicechat.RoleSystem {
			label = e.SenderID
		}
		suffix := ""
		switch e.Status {
		case voicechat.StatusStreaming:
			suffix = " …"
		case voicechat.StatusSending:
			suffix = " (sending)"
		case voicechat.StatusFailed:
			suffix = fmt.Sprintf(" (failed, /retry %s)", shortID(e.ID))
		}
		fmt.Printf("[%s] %s: %s%s\n", ts, label, e.Text, suffix)
	}
	fmt.Print("> ")
}

// resolveID expands a shortened entry id back to the full one.
func resolveID(session *voicechat.Session, short string) string {
	for _, e := range session.Transcript().Entries() {
		if strings.HasPrefix(e.ID, short) {
			return e.ID
		}
	}
	return short
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
