package invoker

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/viant/conduit/service/transport"
)

// TransportError is the classified outcome of one failed attempt. Retryable
// is opt-in: unknown failure modes never trigger another attempt.
type TransportError struct {
	Err       error
	Status    int
	Retryable bool
	Timeout   bool
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("service responded with status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// classify maps a transport outcome to a TransportError, nil for 2xx.
// Transient conditions (connection refused, timeouts, 408, 429, 5xx) are
// retryable; certificate, DNS and remaining 4xx failures are not.
func classify(response *transport.Response, err error) *TransportError {
	if err != nil {
		classified := &TransportError{Err: err}
		if errors.Is(err, context.DeadlineExceeded) {
			classified.Timeout = true
			classified.Retryable = true
			return classified
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			classified.Timeout = true
			classified.Retryable = true
			return classified
		}
		if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
			classified.Retryable = true
			return classified
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return classified
		}
		var unknownAuthority x509.UnknownAuthorityError
		var hostnameErr x509.HostnameError
		var certInvalid x509.CertificateInvalidError
		if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) || errors.As(err, &certInvalid) {
			return classified
		}
		return classified
	}
	if response == nil {
		return &TransportError{Err: fmt.Errorf("no response")}
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	classified := &TransportError{Status: response.StatusCode}
	switch {
	case response.StatusCode == 408, response.StatusCode == 429:
		classified.Retryable = true
		classified.Timeout = response.StatusCode == 408
	case response.StatusCode >= 500:
		classified.Retryable = true
	}
	return classified
}
