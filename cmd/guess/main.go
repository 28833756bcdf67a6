package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fransk/guess/games"
	"github.com/fransk/guess/server"
)

// exitFatal is the status for a game that ended on unreadable or
// unparsable input, or on output it could not write.
const exitFatal = 101

var (
	// Global flags
	verbose bool

	// serve flags
	addr           string
	guessInterval  time.Duration
	guessBurst     int
	sessionTimeout time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd plays a game on stdin/stdout.
var rootCmd = &cobra.Command{
	Use:   "guess",
	Short: "Guess the number between 1 and 100",
	Long: `guess picks a secret number between 1 and 100 and answers every guess
read from stdin with "you winn", "too big" or "too small".

The game never ends on its own. Input that cannot be read or is not a
number stops it with a non-zero exit status.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one game on stdin/stdout (the default)",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host games over websockets",
	Long: `Serves GET /play. Every websocket connection gets its own game: the
intro lines arrive as text messages, each text message sent is a guess and
is answered with its outcome. A guess that is not a number closes the
connection with status 1003.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().DurationVar(&guessInterval, "guess-interval", 100*time.Millisecond, "Minimum time between guesses of one player")
	serveCmd.Flags().IntVar(&guessBurst, "guess-burst", 10, "Guesses a player may send back to back")
	serveCmd.Flags().DurationVar(&sessionTimeout, "session-timeout", 60*time.Minute, "Longest time one connection may play")

	rootCmd.AddCommand(playCmd, serveCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	session := games.NewSession(games.RandomSecret(), logger)
	err := session.Play(cmd.InOrStdin(), cmd.OutOrStdout())
	logger.Error("game over", zap.String("session", session.ID), zap.Error(err))
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gs := server.New(logger, server.Options{
		GuessInterval:  guessInterval,
		GuessBurst:     guessBurst,
		SessionTimeout: sessionTimeout,
	})
	return gs.ListenAndServe(ctx, addr)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, games.ErrReadLine) || errors.Is(err, games.ErrNotANumber) ||
		errors.Is(err, games.ErrWriteOutput) {
		return exitFatal
	}
	return 1
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
