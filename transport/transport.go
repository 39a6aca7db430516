// Package transport acquires raw descriptor buffers from a USB device.
// Its failures are a separate domain from parser diagnostics: a transport
// error means no buffer was fetched, so no parse pass ran.
package transport

import "fmt"

// Kind classifies a transport failure.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindStall
	KindTimeout
	KindDisconnected
	KindAccessDenied
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindStall:
		return "stall"
	case KindTimeout:
		return "timeout"
	case KindDisconnected:
		return "disconnected"
	case KindAccessDenied:
		return "access denied"
	case KindUnsupported:
		return "unsupported"
	default:
		return "other"
	}
}

// Error wraps an underlying transport failure with its classification and
// the operation that failed.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Transport fetches the raw descriptor buffers the analyzer consumes. The
// returned slices are owned by the caller; implementations must not retain
// or reuse them.
type Transport interface {
	// FetchBOS issues GET_DESCRIPTOR for the BOS descriptor.
	FetchBOS() ([]byte, error)
	// FetchMSOS20 issues the MS OS 2.0 vendor request using the vendor
	// code advertised in the BOS descriptor.
	FetchMSOS20(vendorCode uint8) ([]byte, error)
	// FetchWebUSBURL issues the WebUSB GET_URL vendor request for the
	// landing page descriptor.
	FetchWebUSBURL(vendorCode, landingPage uint8) ([]byte, error)
	Close() error
}
