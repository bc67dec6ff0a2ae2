package client

import (
	"errors"
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/types"
)

// ErrorKind classifies why a transfer stopped.
type ErrorKind int

const (
	KindEncoding ErrorKind = iota + 1
	KindProtocol
	KindServer
	KindTimeout
	KindIntegrity
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindEncoding:
		return "encoding"
	case KindProtocol:
		return "protocol"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindIntegrity:
		return "integrity"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TransferError is the only error type returned by Get and Put. Code is
// meaningful for KindServer only.
type TransferError struct {
	Err  error
	Msg  string
	Kind ErrorKind
	Code types.ErrCode
}

func (e *TransferError) Error() string {
	switch {
	case e.Kind == KindServer:
		return fmt.Sprintf("error %d: %s", e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	default:
		return e.Msg
	}
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a TransferError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TransferError

	return errors.As(err, &te) && te.Kind == kind
}

func newError(kind ErrorKind, err error, format string, args ...any) *TransferError {
	return &TransferError{Kind: kind, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func serverError(p *types.Error) *TransferError {
	return &TransferError{Kind: KindServer, Code: p.ErrorCode, Msg: p.ErrMsg}
}
