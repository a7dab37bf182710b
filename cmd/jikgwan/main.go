package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/seungho-m/jikgwan/internal/app"
	"github.com/seungho-m/jikgwan/internal/config"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/services/chat"
	"github.com/seungho-m/jikgwan/internal/services/gathering"
	"github.com/seungho-m/jikgwan/internal/services/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := app.New(&app.Config{
		Config: cfg,
		OnLogout: func() {
			fmt.Println("Session expired; signed out")
		},
	})
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer container.Close()

	ctx := context.Background()

	restored, err := container.Session.Restore(ctx)
	if err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}
	if restored.Authenticated {
		fmt.Printf("Signed in as %s\n", restored.User.Nickname)
	} else {
		fmt.Println("No stored session; use: login <email> <password>")
	}

	runLoop(ctx, container, os.Stdin)
}

func runLoop(ctx context.Context, container *app.App, in *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}

		switch fields[0] {
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <email> <password>")
				break
			}
			output, err := container.Session.Login(ctx, &session.LoginInput{
				Email:    fields[1],
				Password: fields[2],
			})
			if err != nil {
				fmt.Printf("login failed: %v\n", err)
				break
			}
			fmt.Printf("Signed in as %s\n", output.User.Nickname)

		case "logout":
			if err := container.Session.Logout(ctx); err != nil {
				fmt.Printf("logout failed: %v\n", err)
				break
			}
			fmt.Println("Signed out")

		case "gatherings":
			team := ""
			if len(fields) > 1 {
				team = fields[1]
			}
			output, err := container.Gatherings.List(ctx, &gathering.ListInput{Team: team})
			if err != nil {
				fmt.Printf("list failed: %v\n", err)
				break
			}
			for _, g := range output.Page.Content {
				fmt.Printf("  #%d %s vs %s at %s, %s (%d/%d)\n",
					g.ID, g.GameInfo.HomeTeam, g.GameInfo.AwayTeam, g.GameInfo.Stadium,
					g.MeetingPlace, len(g.Participants), g.MaxParticipants)
			}

		case "rooms":
			output, err := container.Chat.Rooms(ctx)
			if err != nil {
				fmt.Printf("rooms failed: %v\n", err)
				break
			}
			for _, summary := range output.Summaries {
				line := ""
				if summary.LastMessage != nil {
					line = summary.LastMessage.Content
				}
				fmt.Printf("  room %d (%d unread) %s\n", summary.RoomID, summary.UnreadCount, line)
			}

		case "open":
			if len(fields) != 2 {
				fmt.Println("usage: open <roomID>")
				break
			}
			roomID, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("usage: open <roomID>")
				break
			}
			openRoom(ctx, container.Chat, roomID, scanner)

		case "quit":
			return

		default:
			fmt.Println("commands: login, logout, gatherings [team], rooms, open <roomID>, quit")
		}
		fmt.Print("> ")
	}
}

// openRoom runs one chat session: history, then lines are sent as
// messages until /quit. Incoming messages print as they are accepted.
func openRoom(ctx context.Context, svc chat.Service, roomID int64, scanner *bufio.Scanner) {
	sess, err := svc.Open(ctx, &chat.OpenInput{
		RoomID: roomID,
		OnMessage: func(msg models.Message) {
			fmt.Printf("  [%s] %d: %s\n", msg.SentAt.Format("15:04"), msg.SenderID, msg.Content)
		},
	})
	if err != nil {
		fmt.Printf("open failed: %v\n", err)
		return
	}
	defer sess.Close()

	for _, msg := range sess.Messages() {
		fmt.Printf("  [%s] %d: %s\n", msg.SentAt.Format("15:04"), msg.SenderID, msg.Content)
	}
	fmt.Println("type messages, /quit to leave the room")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return
		}
		if line == "" {
			continue
		}
		if err := sess.Send(ctx, line); err != nil {
			fmt.Printf("send failed: %v\n", err)
		}
	}
}
