// Package probe performs HTTP reachability checks against a configured
// endpoint, used as a gate for steps that need the private network.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

// Reason classifies why an endpoint was unreachable.
type Reason string

const (
	// ReasonNone means the endpoint was reachable.
	ReasonNone Reason = ""
	// ReasonDNS means name resolution failed.
	ReasonDNS Reason = "dns"
	// ReasonRefused means the connection was refused.
	ReasonRefused Reason = "refused"
	// ReasonTimeout means the connect or total timeout elapsed.
	ReasonTimeout Reason = "timeout"
	// ReasonTLS means the TLS handshake failed.
	ReasonTLS Reason = "tls"
	// ReasonStatus means the endpoint answered with a non-reachable status.
	ReasonStatus Reason = "status"
	// ReasonError means the request failed for another reason.
	ReasonError Reason = "error"
)

// Result is the outcome of a single reachability probe.
type Result struct {
	Reachable  bool
	Reason     Reason
	StatusCode int
	Err        error
}

// ReasonTag returns a short tag describing why the endpoint was unreachable,
// including the HTTP status code when applicable.
func (r Result) ReasonTag() string {
	if r.Reachable {
		return "reachable"
	}
	if r.Reason == ReasonStatus {
		return fmt.Sprintf("status:%d", r.StatusCode)
	}
	return string(r.Reason)
}

// String returns a human-readable description of the result.
func (r Result) String() string {
	if r.Reachable {
		return fmt.Sprintf("reachable (HTTP %d)", r.StatusCode)
	}
	if r.Err != nil {
		return fmt.Sprintf("unreachable (%s): %v", r.ReasonTag(), r.Err)
	}
	return fmt.Sprintf("unreachable (%s)", r.ReasonTag())
}

// Prober performs single HTTP GET probes with connect and total timeouts.
// Redirects are not followed: 301/302 count as reachable on their own.
type Prober struct {
	client *http.Client
}

// New creates a Prober with the given total timeout. The connect timeout is
// the smaller of the total timeout and five seconds.
func New(timeout time.Duration) *Prober {
	connectTimeout := 5 * time.Second
	if timeout < connectTimeout {
		connectTimeout = timeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}

	return &Prober{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe issues one GET against the URL and classifies the result.
// 200, 301 and 302 are reachable; everything else, including transport
// errors, is unreachable with a specific reason.
func (p *Prober) Probe(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Reason: ReasonError, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Reason: classify(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
		return Result{Reachable: true, StatusCode: resp.StatusCode}
	default:
		return Result{Reason: ReasonStatus, StatusCode: resp.StatusCode}
	}
}

// classify maps a transport error to a Reason.
func classify(err error) Reason {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonRefused
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ReasonTLS
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return ReasonTLS
	}

	return ReasonError
}

// Endpoint binds a Prober to a fixed URL so it can serve as a runner gate.
type Endpoint struct {
	prober *Prober
	url    string
}

// NewEndpoint creates an Endpoint for the given URL.
func NewEndpoint(prober *Prober, url string) *Endpoint {
	return &Endpoint{prober: prober, url: url}
}

// URL returns the probed URL.
func (e *Endpoint) URL() string {
	return e.url
}

// Probe checks the endpoint once.
func (e *Endpoint) Probe(ctx context.Context) Result {
	return e.prober.Probe(ctx, e.url)
}
