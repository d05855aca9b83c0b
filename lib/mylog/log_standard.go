package mylog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
)

var (
	baseLogger     *zap.Logger
	baseLoggerOnce sync.Once
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

func zapLogger() *zap.Logger {
	baseLoggerOnce.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		logger, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating zap logger, logging disabled: %s\n", err)
			logger = zap.NewNop()
		}
		baseLogger = logger
	})
	return baseLogger
}

type standardLogger struct {
	logger *zap.SugaredLogger
}

func newStandardLogger(componentName string) Logger {
	return standardLogger{
		logger: zapLogger().Named(componentName).Sugar(),
	}
}

func (l standardLogger) Log(c context.Context, traceLabel string, severity Severity, format string, a ...any) {
	fields := []any{}
	if traceLabel != "" {
		fields = append(fields, "aggregate", traceLabel)
	}
	if trace, _ := c.Value(mycontext.CtxTraceContext{}).(string); trace != "" {
		fields = append(fields, "trace", trace)
	}

	msg := fmt.Sprintf(format, a...)
	switch severity {
	case SeverityDebug:
		l.logger.Debugw(msg, fields...)
	case SeverityWarn:
		l.logger.Warnw(msg, fields...)
	case SeverityError:
		l.logger.Errorw(msg, fields...)
	default:
		l.logger.Infow(msg, fields...)
	}
}
