package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pocketchat/internal/app"
	"pocketchat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagServer string
	flagUser   string
	flagNoTUI  bool
)

func main() {
	root := &cobra.Command{
		Use:     "pocketchat",
		Short:   "pocketchat - terminal chat client with named conversations",
		Long:    "pocketchat keeps multiple named conversations with a remote assistant,\npersists them locally, and streams replies into a terminal UI.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(app.DefaultConfigPath())
			if err != nil {
				return err
			}
			if flagServer != "" {
				cfg.ServerURL = flagServer
			} else if env := os.Getenv("POCKETCHAT_SERVER"); env != "" {
				cfg.ServerURL = env
			}
			if flagUser != "" {
				cfg.UserID = flagUser
			}

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			if flagNoTUI {
				return runREPL(application)
			}

			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&flagServer, "server", "", "chat server base URL (overrides config)")
	root.Flags().StringVar(&flagUser, "user", "", "user id sent with each message")
	root.Flags().BoolVarP(&flagNoTUI, "no-tui", "n", false, "plain REPL instead of the TUI")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(app.DefaultConfigPath())
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			sessions := application.Store.Load()
			if len(sessions) == 0 {
				fmt.Println("no conversations yet")
				return nil
			}
			for _, sess := range sessions {
				fmt.Printf("%s  %-35s %d messages  %s\n",
					sess.ID, sess.Title, len(sess.Messages), sess.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	root.AddCommand(sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runREPL is the --no-tui fallback: one conversation, streamed replies
// printed word by word.
func runREPL(application *app.Application) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fmt.Println("pocketchat REPL. Ctrl+D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		printed := 0
		err := application.Pipeline.Submit(ctx, input, func(ev app.Event) {
			switch ev.Kind {
			case app.EventReveal:
				fmt.Print(ev.Content[printed:])
				printed = len(ev.Content)
			case app.EventDone:
				fmt.Println()
			case app.EventFailed:
				fmt.Println(ev.Content)
			}
		})
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, app.ErrOffline):
			fmt.Println("(offline, message not sent)")
		case err != nil:
			fmt.Printf("(not sent: %v)\n", err)
		}
	}
}
