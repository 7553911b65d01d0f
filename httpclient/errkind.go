package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// Values of the error.type attribute for requests that got no response.
const (
	ErrorTypeTimeout           = "timeout"
	ErrorTypeConnectionRefused = "connection_refused"
	ErrorTypeDNSError          = "dns_error"
	ErrorTypeTLSError          = "tls_error"
	ErrorTypeCancelled         = "cancelled"
	ErrorTypeConnectionReset   = "connection_reset"
	ErrorTypeEOF               = "eof"
	ErrorTypeUnknown           = "unknown"
)

// errorRules are checked in order; the first match wins.
var errorRules = []struct {
	kind  string
	match func(error) bool
}{
	{ErrorTypeCancelled, func(err error) bool { return errors.Is(err, context.Canceled) }},
	{ErrorTypeTimeout, func(err error) bool {
		var netErr net.Error
		return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	}},
	{ErrorTypeDNSError, func(err error) bool {
		var dnsErr *net.DNSError
		return errors.As(err, &dnsErr)
	}},
	{ErrorTypeTLSError, func(err error) bool {
		var recordErr *tls.RecordHeaderError
		var certErr *tls.CertificateVerificationError
		return errors.As(err, &recordErr) || errors.As(err, &certErr)
	}},
	{ErrorTypeConnectionRefused, func(err error) bool { return errors.Is(err, syscall.ECONNREFUSED) }},
	{ErrorTypeConnectionReset, func(err error) bool { return errors.Is(err, syscall.ECONNRESET) }},
	{ErrorTypeEOF, func(err error) bool { return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) }},
}

// errorHints classify errors whose type was lost to string wrapping.
var errorHints = []struct {
	kind    string
	needles []string
}{
	{ErrorTypeTimeout, []string{"timeout"}},
	{ErrorTypeConnectionRefused, []string{"connection refused"}},
	{ErrorTypeConnectionReset, []string{"connection reset"}},
	{ErrorTypeDNSError, []string{"no such host"}},
	{ErrorTypeTLSError, []string{"x509", "certificate"}},
	{ErrorTypeEOF, []string{"eof"}},
}

// classifyError maps a transport error to an error.type value.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	for _, rule := range errorRules {
		if rule.match(err) {
			return rule.kind
		}
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range errorHints {
		for _, needle := range hint.needles {
			if strings.Contains(msg, needle) {
				return hint.kind
			}
		}
	}
	return ErrorTypeUnknown
}

// statusErrorType is the status code for 4xx and 5xx, empty otherwise.
func statusErrorType(code int) string {
	if code >= 400 {
		return strconv.Itoa(code)
	}
	return ""
}
