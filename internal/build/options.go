package build

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/miles-bartnik/tyr/internal/dialect"
)

// Mode selects which tables a run builds.
type Mode string

const (
	FullRebuild Mode = "full_rebuild"
	Incremental Mode = "incremental"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case FullRebuild, Incremental:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, FullRebuild, Incremental)
}

// Policy selects what a run does when a statement fails.
type Policy string

const (
	FailFast   Policy = "fail_fast"
	SkipErrors Policy = "skip_errors"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case FailFast, SkipErrors:
		return p, nil
	}
	return "", fmt.Errorf("unknown policy %q (want %s or %s)", s, FailFast, SkipErrors)
}

// Option configures a Builder.
type Option func(*Builder)

// WithDialect sets the SQL dialect. Defaults to dialect.DuckDB.
func WithDialect(d *dialect.Dialect) Option {
	return func(b *Builder) {
		b.dialect = d
	}
}

// WithMode sets the build mode. Defaults to FullRebuild.
func WithMode(m Mode) Option {
	return func(b *Builder) {
		b.mode = m
	}
}

// WithPolicy sets the failure policy. Defaults to FailFast.
func WithPolicy(p Policy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithLogger sets the logger for build events. nil discards them.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithRunIDGenerator sets the run id source. Defaults to UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(b *Builder) {
		b.ids = g
	}
}

// WithClock sets the time source for report timings. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithTargets limits a run to the named tables and everything they depend
// on. No targets means the whole schema.
func WithTargets(names ...string) Option {
	return func(b *Builder) {
		b.targets = names
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
