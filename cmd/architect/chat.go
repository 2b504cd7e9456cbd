package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/gateway"
)

var chatSpeak bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant",
	Long: "Start an interactive conversation with the assistant. It can switch projects and open " +
		"panels for you. Type /reset to start over and /quit to leave.",
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatSpeak, "speak", false, "Read replies aloud with the configured audio player")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	language := a.store.Prefs().Language
	session, err := a.gateway.CreateChatSession(ctx, language, a.dispatcher)
	if err != nil {
		return err
	}

	return chatLoop(os.Stdin, os.Stdout, func(line string) error {
		if line == "/reset" {
			session, err = a.gateway.CreateChatSession(ctx, language, a.dispatcher)
			if err == nil {
				fmt.Println("(conversation reset)")
			}
			return err
		}

		result, err := session.Send(ctx, line, func(cr gateway.CommandResult) {
			fmt.Printf("  → %s %s: %s\n", cr.Command.Action, cr.Command.Target, cr.Outcome.Message)
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", result.Text)
		if chatSpeak && result.Text != "" {
			if err := a.gateway.Speak(ctx, result.Text); err != nil {
				a.logger.Warn().Err(err).Msg("speech failed")
			}
		}
		return nil
	})
}

// chatLoop reads lines from in and passes each non-empty one to handle until EOF or /quit.
// A handler error is printed and the loop continues.
func chatLoop(in io.Reader, out io.Writer, handle func(line string) error) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ") //nolint:errcheck
		if !sc.Scan() {
			fmt.Fprintln(out) //nolint:errcheck
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}
		if err := handle(line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err) //nolint:errcheck
		}
	}
}
