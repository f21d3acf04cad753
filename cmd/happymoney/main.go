package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"happymoney/internal/api"
	"happymoney/internal/chat"
	"happymoney/internal/cli"
	"happymoney/internal/core"
	"happymoney/internal/services"
)

const usage = `Commands:
  /stop      cancel the streaming reply
  /generate  turn the conversation into a diary draft
  /save      persist the diary draft
  /quit      exit
Anything else is sent to the assistant.`

func main() {
	txID := flag.String("tx", "", "transaction id to write a diary for")
	userID := flag.String("user", "", "user id (overrides HAPPYMONEY_USER_ID)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if *txID == "" {
		fmt.Fprintln(os.Stderr, "usage: happymoney -tx <transaction-id>")
		os.Exit(2)
	}
	if *userID != "" {
		cfg.UserID = *userID
	}

	client := cli.InitClient(logger, cfg)
	store := cli.InitMirror(logger, cfg)
	defer store.Close()

	ctx, _ := cli.GracefulShutdown(logger, 10*time.Second, nil)

	session := api.NewSession(client)
	if user, err := session.Restore(ctx); err == nil {
		logger.Info("Session restored", "user_id", user.UserID)
	} else if cfg.UserID != "" {
		user, err := session.Login(ctx, cfg.UserID)
		if err != nil {
			logger.Error("Login failed", "error", err, "user_id", cfg.UserID)
			os.Exit(1)
		}
		logger.Info("Logged in", "user_id", user.UserID)
	} else {
		logger.Error("No session and no user id configured")
		os.Exit(1)
	}

	if tx, err := client.GetTransaction(ctx, *txID); err != nil {
		logger.Warn("Transaction lookup failed", "error", err, "tx_id", *txID)
	} else {
		fmt.Println(tx.Summary())
	}

	conv := chat.NewConversation(*txID, client, store)
	conv.Restore(ctx)

	fmt.Println(usage)

	printToken := func(tok string) { fmt.Print(tok) }

	// Turns run in the background so /stop stays available mid-stream.
	runTurn := func(run func() error) {
		go func() {
			if err := run(); err != nil {
				fmt.Printf("\n! %v\n", err)
			} else {
				fmt.Println()
			}
		}()
	}

	if snap := conv.Snapshot(); len(snap.Messages) == 0 {
		runTurn(func() error { return conv.AskInitial(ctx, printToken) })
	} else {
		for _, m := range snap.Messages {
			fmt.Printf("[%s] %s\n", m.Role, m.Content)
		}
	}

	diarySvc := services.NewDiaryService(client)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "/quit":
			conv.Abort()
			return

		case "/stop":
			conv.Abort()
			fmt.Println("(stopped)")

		case "/generate":
			title, body, err := conv.GenerateDiary(ctx)
			if err != nil {
				fmt.Printf("! generate failed: %v\n", err)
				continue
			}
			if title == "" && body == "" {
				fmt.Println("The agent returned nothing this time. Chat a bit more and try /generate again.")
				continue
			}
			fmt.Printf("--- %s ---\n%s\n", title, body)

		case "/save":
			snap := conv.Snapshot()
			confirm := func(existing core.DiaryEntry) bool {
				fmt.Printf("A diary %q already exists for this transaction. Overwrite? [y/N] ", existing.DiaryTitle)
				if !scanner.Scan() {
					return false
				}
				return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
			}
			entry, err := diarySvc.Save(ctx, *txID, snap.DiaryTitle, snap.DiaryBody, confirm)
			switch {
			case errors.Is(err, core.ErrEmptyDiaryTitle), errors.Is(err, core.ErrEmptyDiaryBody):
				fmt.Println("Nothing to save yet. Run /generate first.")
			case errors.Is(err, services.ErrOverwriteDeclined):
				fmt.Println("(kept the existing diary)")
			case err != nil:
				fmt.Printf("! save failed: %v\n", err)
			default:
				fmt.Printf("Saved diary %s.\n", entry.ID)
			}

		case "":
			// Ignore blank lines.

		default:
			if conv.Snapshot().Streaming {
				fmt.Println("(still replying, /stop to cancel)")
				continue
			}
			runTurn(func() error { return conv.Send(ctx, line, printToken) })
		}
	}

	conv.Abort()
}
