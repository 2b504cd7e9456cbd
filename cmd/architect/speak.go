package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var speakOut string

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Read text aloud",
	Long: "Synthesize speech for text. With --out the audio is written as a WAV file; otherwise it is " +
		"played with the command in ARCHITECT_AUDIO_PLAYER (for example \"aplay -q\").",
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakOut, "out", "o", "", "Write a WAV file instead of playing")
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	text := strings.Join(args, " ")
	if speakOut != "" {
		audio, err := a.gateway.SynthesizeSpeech(ctx, text)
		if err != nil {
			return err
		}
		if err := os.WriteFile(speakOut, audio.WAV(), 0o644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", speakOut, audio.Duration().Round(100*time.Millisecond))
		return nil
	}

	if command, _ := a.cfg.PlayerArgs(); command == "" {
		return fmt.Errorf("no audio player configured (set ARCHITECT_AUDIO_PLAYER or use --out)")
	}
	if err := a.gateway.Speak(ctx, text); err != nil {
		return err
	}
	return a.gateway.Speaker().Wait(ctx)
}
