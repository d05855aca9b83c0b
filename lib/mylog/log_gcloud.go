package mylog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/MarcGrol/cafeshop/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudLogger
		// Cloud Logging only parses lines that are pure json and adds its own timestamp
		log.SetFlags(0)
	}
}

// cloudLogger writes one Cloud Logging json line per call.
// The aggregate (order, user or session) becomes a label, so all lines of one order can be filtered together.
type cloudLogger struct {
	component string
}

func newGcloudLogger(component string) Logger {
	return cloudLogger{
		component: component,
	}
}

func (l cloudLogger) Log(c context.Context, traceLabel string, severity Severity, format string, a ...any) {
	trace, _ := c.Value(mycontext.CtxTraceContext{}).(string)

	labels := map[string]string{"component": l.component}
	if traceLabel != "" {
		labels["aggregate"] = traceLabel
	}

	line, err := json.Marshal(cloudEntry{
		Severity: string(severity),
		Message:  fmt.Sprintf(format, a...),
		Trace:    trace,
		Labels:   labels,
	})
	if err != nil {
		log.Printf("error marshalling log line of %s: %v", l.component, err)
		return
	}
	log.Println(string(line))
}

type cloudEntry struct {
	Severity string            `json:"severity,omitempty"`
	Message  string            `json:"message"`
	Trace    string            `json:"logging.googleapis.com/trace,omitempty"`
	Labels   map[string]string `json:"logging.googleapis.com/labels,omitempty"`
}
