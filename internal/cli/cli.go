// Package cli implements the record command: it records one match result from
// the command line, either against the local rating table or against a
// running server.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	repository "github.com/okian/osmelo/internal/adapters/repository"
	service "github.com/okian/osmelo/internal/app"
	"github.com/okian/osmelo/internal/config"
	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/internal/domain/types"
	"github.com/okian/osmelo/pkg/logger"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const defaultTimeout = 10 * time.Second

// Recorder applies one match and reports both players' ratings.
type Recorder interface {
	ComputeNewRatings(ctx context.Context, m model.Match) (types.MatchResult, error)
}

// Options holds the parsed command line.
type Options struct {
	StorePath string        // Rating table, overrides the configured one
	ServerURL string        // When set, the match is posted to this server
	MatchID   string        // Optional idempotency key
	Timeout   time.Duration // HTTP request timeout in server mode
	Match     model.Match
}

// ShowHelp prints usage information for the record command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Record a match result and update both players' ratings.

Usage:
  record [options] PLAYER1 PLAYER2 SCORE1 SCORE2

Options:
  -store string
        Rating table to update (default from OSMELO_STORE_PATH or elo_data.csv)
  -url string
        Post the match to a running server instead of writing the table
  -id string
        Match id; a repeated id is rejected instead of counted twice
  -timeout duration
        HTTP request timeout when -url is set (default 10s)
  -help
        Show this help message

Examples:
  record Alice Bob 3 1
  record -store league.csv -id week7-alice-bob Alice Bob 2 2
  record -url http://localhost:9080 Alice Bob 0 1

Exit status is 0 on success, 2 on invalid input and 1 on any other failure.
`)
}

// ParseArgs parses flags and the four positional arguments.
// flag.ErrHelp is returned when -help is given.
func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { ShowHelp(stderr) }
	fs.StringVar(&opts.StorePath, "store", "", "Rating table to update")
	fs.StringVar(&opts.ServerURL, "url", "", "Base URL of a running server")
	fs.StringVar(&opts.MatchID, "id", "", "Match id")
	fs.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	rest := fs.Args()
	if len(rest) != 4 {
		return Options{}, fmt.Errorf("%w: expected PLAYER1 PLAYER2 SCORE1 SCORE2, got %d arguments", model.ErrInvalidInput, len(rest))
	}
	s1, err := model.ParseScore(model.FieldScore1, rest[2])
	if err != nil {
		return Options{}, err
	}
	s2, err := model.ParseScore(model.FieldScore2, rest[3])
	if err != nil {
		return Options{}, err
	}
	opts.Match = model.Match{ID: opts.MatchID, Player1: rest[0], Player2: rest[1], Score1: s1, Score2: s2}
	return opts, nil
}

// Run executes the record command and returns the process exit code.
// cfg supplies the rating parameters and the default table path.
func Run(ctx context.Context, args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	opts, err := ParseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "record:", err)
		return ExitUsage
	}
	if cfg == nil {
		cfg = config.New()
	}
	return Record(ctx, newRecorder(opts, cfg), opts.Match, stdout, stderr)
}

// Record applies m through rec and prints the outcome.
func Record(ctx context.Context, rec Recorder, m model.Match, stdout, stderr io.Writer) int {
	res, err := rec.ComputeNewRatings(ctx, m)
	if err != nil {
		fmt.Fprintln(stderr, "record:", err)
		return exitCode(err)
	}
	fmt.Fprintln(stdout, "Ratings updated:")
	for _, p := range []types.PlayerChange{res.Player1, res.Player2} {
		fmt.Fprintf(stdout, "%s: %s -> %s\n", p.ID, repository.FormatRating(p.OldRating), repository.FormatRating(p.NewRating))
	}
	return ExitOK
}

func newRecorder(opts Options, cfg *config.Config) Recorder {
	if opts.ServerURL != "" {
		return NewRemoteRecorder(opts.ServerURL, opts.Timeout)
	}
	local := *cfg
	if opts.StorePath != "" {
		local.StorePath = opts.StorePath
	}
	return service.New(
		service.WithLogger(logger.Named("record")),
		service.WithConfig(&local),
	)
}

func exitCode(err error) int {
	if errors.Is(err, model.ErrInvalidInput) {
		return ExitUsage
	}
	return ExitFailure
}
