// Package observability reports server-side failures to Sentry.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the Sentry client and returns its flush func.
// An empty DSN disables reporting.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr sends err to Sentry; nil is ignored. Without InitSentry this is a no-op.
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}
