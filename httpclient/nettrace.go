package httpclient

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// interval is a start/end pair captured by httptrace hooks.
type interval struct {
	start, end time.Time
}

func (iv interval) complete() bool { return !iv.start.IsZero() && !iv.end.IsZero() }

func (iv interval) duration() time.Duration { return iv.end.Sub(iv.start) }

// netTrace collects the timings of one round trip. Hooks may fire on the
// dialer goroutine, so every field is guarded by mu.
type netTrace struct {
	mu sync.Mutex

	phases   [phaseCount]interval
	addrs    []string
	alpn     string
	connAt   time.Time
	reused   bool
	peerAddr string
}

func (nt *netTrace) mark(p phase, end bool) {
	now := time.Now()
	nt.mu.Lock()
	if end {
		nt.phases[p].end = now
	} else {
		nt.phases[p].start = now
	}
	nt.mu.Unlock()
}

// hooks returns the httptrace.ClientTrace that feeds nt.
func (nt *netTrace) hooks() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { nt.mark(phaseDNS, false) },
		DNSDone: func(info httptrace.DNSDoneInfo) {
			nt.mark(phaseDNS, true)
			nt.mu.Lock()
			for _, addr := range info.Addrs {
				nt.addrs = append(nt.addrs, addr.String())
			}
			nt.mu.Unlock()
		},
		ConnectStart:      func(_, _ string) { nt.mark(phaseConnect, false) },
		ConnectDone:       func(_, _ string, _ error) { nt.mark(phaseConnect, true) },
		TLSHandshakeStart: func() { nt.mark(phaseTLS, false) },
		TLSHandshakeDone: func(state tls.ConnectionState, _ error) {
			nt.mark(phaseTLS, true)
			nt.mu.Lock()
			nt.alpn = state.NegotiatedProtocol
			nt.mu.Unlock()
		},
		GotConn: func(info httptrace.GotConnInfo) {
			nt.mu.Lock()
			defer nt.mu.Unlock()
			nt.connAt = time.Now()
			nt.reused = info.Reused
			if info.Conn != nil && info.Conn.RemoteAddr() != nil {
				nt.peerAddr = info.Conn.RemoteAddr().String()
			}
		},
		WroteRequest:         func(httptrace.WroteRequestInfo) { nt.mark(phaseTTFB, false) },
		GotFirstResponseByte: func() { nt.mark(phaseTTFB, true) },
	}
}

// annotate adds one span event per completed phase plus a conn event.
func (nt *netTrace) annotate(span trace.Span) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	for p := phase(0); p < phaseCount; p++ {
		iv := nt.phases[p]
		if !iv.complete() {
			continue
		}
		attrs := []attribute.KeyValue{
			attribute.Float64(p.String()+".duration_ms", float64(iv.duration().Microseconds())/1000),
		}
		switch p {
		case phaseDNS:
			attrs = append(attrs, attribute.StringSlice("dns.addresses", nt.addrs))
		case phaseTLS:
			attrs = append(attrs, attribute.String("tls.protocol", nt.alpn))
		}
		span.AddEvent(p.String()+".done", trace.WithTimestamp(iv.end), trace.WithAttributes(attrs...))
	}

	if !nt.connAt.IsZero() {
		span.AddEvent("conn.acquired", trace.WithTimestamp(nt.connAt), trace.WithAttributes(
			attribute.Bool("connection.reused", nt.reused),
			attribute.String("network.peer.address", nt.peerAddr),
		))
	}
}

// record feeds every completed phase into its histogram.
func (nt *netTrace) record(ctx context.Context, inst *instruments, attrs []attribute.KeyValue) {
	if inst == nil {
		return
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()

	for p := phase(0); p < phaseCount; p++ {
		if iv := nt.phases[p]; iv.complete() {
			inst.phase(ctx, p, iv.duration(), attrs)
		}
	}
}
