package client

type EventKind int

const (
	EventTransfer EventKind = iota + 1
	EventRetransmit
)

// ProgressEvent is emitted after every acknowledged block and before every
// retransmission. Total is the local file size for uploads and zero for
// downloads.
type ProgressEvent struct {
	Kind    EventKind
	Block   int
	Attempt int
	Bytes   int64
	Total   int64
}

type ProgressFunc func(ev ProgressEvent)

func (f ProgressFunc) emit(ev ProgressEvent) {
	if f != nil {
		f(ev)
	}
}
