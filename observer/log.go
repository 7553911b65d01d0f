package observer

import (
	"github.com/rs/zerolog"

	"github.com/kroma-labs/grest/grest"
)

// NewLogObserver returns a subscriber that writes one structured line per
// lifecycle message: pending at debug, ok at info and fail at warn level.
//
//	api.Subscribe("log", observer.NewLogObserver(logger))
func NewLogObserver(logger zerolog.Logger) func(grest.Message) {
	return func(msg grest.Message) {
		var event *zerolog.Event
		switch msg.Status {
		case grest.StatusOK:
			event = logger.Info()
		case grest.StatusFail:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}

		event.
			Str("endpoint", endpointLabel(msg.Endpoint)).
			Str("method", msg.Method).
			Str("status", string(msg.Status)).
			Msg("grest request")
	}
}

// endpointLabel names endpoint-less requests.
func endpointLabel(endpoint string) string {
	if endpoint == "" {
		return "null"
	}
	return endpoint
}
