package cli_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/osmelo/internal/adapters/http/api"
	service "github.com/okian/osmelo/internal/app"
	"github.com/okian/osmelo/internal/cli"
	"github.com/okian/osmelo/internal/config"
	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		panic(err)
	}
}

func TestParseArgs(t *testing.T) {
	Convey("Given record command lines", t, func() {
		var stderr bytes.Buffer

		Convey("When all four arguments are valid", func() {
			opts, err := cli.ParseArgs([]string{"-id", "m7", "Alice", "Bob", " 3", "1"}, &stderr)

			Convey("Then the match is built from them", func() {
				So(err, ShouldBeNil)
				So(opts.Match, ShouldResemble, model.Match{ID: "m7", Player1: "Alice", Player2: "Bob", Score1: 3, Score2: 1})
				So(opts.Timeout, ShouldEqual, 10*time.Second)
			})
		})

		Convey("When an argument is missing", func() {
			_, err := cli.ParseArgs([]string{"Alice", "Bob", "3"}, &stderr)

			Convey("Then it is invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When a score is not a number", func() {
			_, err := cli.ParseArgs([]string{"Alice", "Bob", "three", "1"}, &stderr)

			Convey("Then the score field is named", func() {
				var inv *model.InvalidInputError
				So(errors.As(err, &inv), ShouldBeTrue)
				So(inv.Field, ShouldEqual, model.FieldScore1)
			})
		})

		Convey("When a score is negative", func() {
			_, err := cli.ParseArgs([]string{"Alice", "Bob", "1", "-1"}, &stderr)

			Convey("Then the second score is named", func() {
				var inv *model.InvalidInputError
				So(errors.As(err, &inv), ShouldBeTrue)
				So(inv.Field, ShouldEqual, model.FieldScore2)
			})
		})

		Convey("When help is requested", func() {
			_, err := cli.ParseArgs([]string{"-help"}, &stderr)

			Convey("Then usage is printed", func() {
				So(errors.Is(err, flag.ErrHelp), ShouldBeTrue)
				So(stderr.String(), ShouldContainSubstring, "PLAYER1 PLAYER2 SCORE1 SCORE2")
			})
		})
	})
}

func TestRun_Local(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty rating table", t, func() {
		path := filepath.Join(t.TempDir(), "elo_data.csv")
		var stdout, stderr bytes.Buffer

		Convey("When Alice beats Bob 3-1", func() {
			code := cli.Run(ctx, []string{"-store", path, "Alice", "Bob", "3", "1"}, config.New(), &stdout, &stderr)

			Convey("Then both ratings are printed and stored", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout.String(), ShouldEqual, "Ratings updated:\nAlice: 1000 -> 1033\nBob: 1000 -> 966\n")
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "Alice,1033,\nBob,966,\n")
			})
		})

		Convey("When the store path comes from configuration", func() {
			cfg := config.New()
			cfg.StorePath = path
			code := cli.Run(ctx, []string{"Alice", "Bob", "0", "0"}, cfg, &stdout, &stderr)

			Convey("Then the configured table is written", func() {
				So(code, ShouldEqual, cli.ExitOK)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "Alice,1000,\nBob,1000,\n")
			})
		})

		Convey("When a player plays themselves", func() {
			code := cli.Run(ctx, []string{"-store", path, "Alice", "Alice", "3", "1"}, config.New(), &stdout, &stderr)

			Convey("Then the exit code reports invalid input", func() {
				So(code, ShouldEqual, cli.ExitUsage)
				So(stderr.String(), ShouldContainSubstring, "player2")
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When a score cannot be parsed", func() {
			code := cli.Run(ctx, []string{"-store", path, "Alice", "Bob", "3.5", "1"}, config.New(), &stdout, &stderr)

			Convey("Then the exit code reports invalid input", func() {
				So(code, ShouldEqual, cli.ExitUsage)
				So(stdout.Len(), ShouldEqual, 0)
			})
		})

		Convey("When help is requested", func() {
			code := cli.Run(ctx, []string{"-help"}, nil, &stdout, &stderr)

			Convey("Then it exits cleanly", func() {
				So(code, ShouldEqual, cli.ExitOK)
			})
		})
	})

	Convey("Given a table in a directory that does not exist", t, func() {
		path := filepath.Join(t.TempDir(), "missing", "elo_data.csv")
		var stdout, stderr bytes.Buffer

		Convey("When a match is recorded", func() {
			code := cli.Run(ctx, []string{"-store", path, "Alice", "Bob", "1", "0"}, config.New(), &stdout, &stderr)

			Convey("Then the exit code reports a failure", func() {
				So(code, ShouldEqual, cli.ExitFailure)
				So(stderr.String(), ShouldContainSubstring, "storage unavailable")
			})
		})
	})
}

func TestRun_Remote(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running server", t, func() {
		path := filepath.Join(t.TempDir(), "elo_data.csv")
		svc := service.New(service.WithStorePath(path))
		srv := httptest.NewServer(api.NewServer(svc, 100).Handler())
		defer srv.Close()
		var stdout, stderr bytes.Buffer

		Convey("When a match is posted", func() {
			code := cli.Run(ctx, []string{"-url", srv.URL + "/", "-id", "r1", "Alice", "Bob", "3", "1"}, config.New(), &stdout, &stderr)

			Convey("Then the server's result is printed", func() {
				So(code, ShouldEqual, cli.ExitOK)
				So(stdout.String(), ShouldEqual, "Ratings updated:\nAlice: 1000 -> 1033\nBob: 1000 -> 966\n")
			})

			Convey("And posting the same id again fails as a duplicate", func() {
				rec := cli.NewRemoteRecorder(srv.URL, time.Second)
				_, err := rec.ComputeNewRatings(ctx, model.Match{ID: "r1", Player1: "Alice", Player2: "Bob", Score1: 3, Score2: 1})
				So(errors.Is(err, service.ErrDuplicateMatch), ShouldBeTrue)

				var re *cli.RemoteError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Status, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the server rejects the input", func() {
			code := cli.Run(ctx, []string{"-url", srv.URL, "Alice", "Alice", "1", "0"}, config.New(), &stdout, &stderr)

			Convey("Then the exit code reports invalid input", func() {
				So(code, ShouldEqual, cli.ExitUsage)
				So(stderr.String(), ShouldContainSubstring, "invalid_input")
			})
		})
	})

	Convey("Given a server that answers with plain text", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		Convey("When a match is posted", func() {
			_, err := cli.NewRemoteRecorder(srv.URL, time.Second).ComputeNewRatings(ctx,
				model.Match{Player1: "Alice", Player2: "Bob", Score1: 1, Score2: 0})

			Convey("Then the body is reported as an unknown error", func() {
				var re *cli.RemoteError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Code, ShouldEqual, "unknown")
				So(re.Message, ShouldEqual, "upstream down")
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeFalse)
			})
		})
	})
}
