package mailer

import (
	"fmt"
)

// Kind classifies why a send failed
type Kind int

const (
	// KindConfig means the transport is missing required settings
	KindConfig Kind = iota + 1
	// KindConnection means the server could not be reached or TLS failed
	KindConnection
	// KindProtocol means the server rejected the message
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	}
	return "unknown"
}

// SendError is returned by every Sender
type SendError struct {
	Kind Kind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("email %s error: %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func configError(format string, args ...interface{}) error {
	return &SendError{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}
