package logs

import (
	"context"
	"crypto/rand"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

var Output *os.File

// InitializeFileLogger points the default logger at logs.txt in the given directory, truncating it.
func InitializeFileLogger(dir string, debug bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "couldn't create %s directory", dir)
	}
	f, err := os.Create(filepath.Join(dir, "logs.txt"))
	if err != nil {
		return errors.Wrap(err, "couldn't create logs file")
	}
	CloseLogger()
	Output = f

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(Output, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

func CloseLogger() {
	if Output != nil {
		Output.Close()
		Output = nil
	}
}

type queryIDKey struct{}

// WithQueryID attaches a fresh query id to the context, so all log lines of a single query can be correlated.
func WithQueryID(ctx context.Context) (context.Context, string) {
	id := ulid.MustNew(ulid.Now(), rand.Reader).String()
	return context.WithValue(ctx, queryIDKey{}, id), id
}

func QueryID(ctx context.Context) string {
	id, _ := ctx.Value(queryIDKey{}).(string)
	return id
}

// FromContext returns the default logger, tagged with the context's query id if there is one.
func FromContext(ctx context.Context) *slog.Logger {
	if id := QueryID(ctx); id != "" {
		return slog.Default().With(slog.String("query_id", id))
	}
	return slog.Default()
}
