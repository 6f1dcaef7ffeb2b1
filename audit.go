package authcore

import (
	"io"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/logging"
)

type (
	AuditEvent     = audit.Event
	AuditSink      = audit.Sink
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	LoggerSink     = audit.LoggerSink
	FuncSink       = audit.FuncSink
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewLoggerSink routes audit events into log alongside ordinary log lines.
func NewLoggerSink(log logging.Logger) *LoggerSink {
	return audit.NewLoggerSink(log)
}
