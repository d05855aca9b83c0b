package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New is bound at init-time: Cloud Logging JSON on Google Cloud, zap everywhere else.
var New func(name string) Logger

type Logger interface {
	// Log writes one entry. traceLabel identifies the aggregate (order, user, session) the entry is about.
	Log(c context.Context, traceLabel string, severity Severity, format string, a ...any)
}
