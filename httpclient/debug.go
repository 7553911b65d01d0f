package httpclient

import (
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// sensitiveHeaders are masked in debug logs. cURL output keeps them so the
// command can be replayed.
var sensitiveHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization", "Set-Cookie"}

// curlCommand renders req as a cURL command line:
//
//	curl -X POST 'https://api.example.com/users/' -H 'Content-Type: application/json' -d '{"name":"ada"}'
func curlCommand(req *http.Request, body []byte) string {
	var b strings.Builder
	b.WriteString("curl")
	if req.Method != http.MethodGet {
		b.WriteString(" -X " + req.Method)
	}
	b.WriteString(" " + shellQuote(req.URL.String()))

	for _, k := range slices.Sorted(maps.Keys(req.Header)) {
		for _, v := range req.Header[k] {
			b.WriteString(" -H " + shellQuote(k+": "+v))
		}
	}

	if len(body) > 0 {
		b.WriteString(" -d " + shellQuote(string(body)))
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// debugLog writes request and response traces at debug level.
type debugLog struct {
	logger zerolog.Logger
}

func (d debugLog) headers(h http.Header) *zerolog.Event {
	dict := zerolog.Dict()
	for _, k := range slices.Sorted(maps.Keys(h)) {
		if slices.Contains(sensitiveHeaders, http.CanonicalHeaderKey(k)) {
			dict = dict.Str(k, "***")
			continue
		}
		dict = dict.Str(k, strings.Join(h[k], ", "))
	}
	return dict
}

func (d debugLog) request(req *http.Request) {
	d.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Dict("headers", d.headers(req.Header)).
		Msg("httpclient request")
}

func (d debugLog) response(req *http.Request, resp *http.Response, elapsed time.Duration) {
	d.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Int64("content_length", resp.ContentLength).
		Dict("headers", d.headers(resp.Header)).
		Msg("httpclient response")
}

func (d debugLog) failure(req *http.Request, err error, elapsed time.Duration) {
	d.logger.Debug().
		Err(err).
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Str("error_type", classifyError(err)).
		Dur("elapsed", elapsed).
		Msg("httpclient request failed")
}
