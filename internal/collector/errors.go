package collector

import (
	"errors"
	"fmt"
)

// Kind classifies why a load failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindFormat
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "TRANSPORT"
	case KindFormat:
		return "FORMAT"
	case KindEmpty:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// Sentinels matched by errors.Is against a *LoadError of the same kind.
var (
	ErrTransport = errors.New("transport failure")
	ErrFormat    = errors.New("unexpected response format")
	ErrEmpty     = errors.New("no valid rows")

	ErrEmptySymbol = errors.New("symbol is required")
)

// LoadError is returned by fetchers and the Loader for terminal load failures.
type LoadError struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Symbol, e.sentinel())
	}
	return fmt.Sprintf("load %s: %s: %v", e.Symbol, e.sentinel(), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *LoadError) sentinel() error {
	switch e.Kind {
	case KindTransport:
		return ErrTransport
	case KindFormat:
		return ErrFormat
	case KindEmpty:
		return ErrEmpty
	default:
		return nil
	}
}

func transportErr(symbol string, err error) error {
	return &LoadError{Kind: KindTransport, Symbol: symbol, Err: err}
}

func formatErr(symbol string, err error) error {
	return &LoadError{Kind: KindFormat, Symbol: symbol, Err: err}
}

// KindOf reports the load failure kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
