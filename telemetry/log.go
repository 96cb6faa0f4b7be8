package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the structured log sink every worker and the coordinator
// write through, keyed by app_name = serviceName (spec §6). Grounded on
// github.com/rs/zerolog, carried in DataDog-datadog-agent's go.mod,
// replacing the teacher's bare stdlib log.Printf calls.
func NewLogger(serviceName string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("app_name", serviceName).
		Logger()
}
