package client

// shouldRetry decides whether a failed wait may be repeated. Only timeouts
// are retried, never before the peer has answered once, and never past
// maxAttempts.
func shouldRetry(kind ErrorKind, attempt, maxAttempts int, received bool) bool {
	return kind == KindTimeout && received && attempt < maxAttempts
}

type retryPolicy struct {
	attempt     int
	maxAttempts int
	received    bool
}

func newRetryPolicy(maxAttempts int) *retryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &retryPolicy{attempt: 1, maxAttempts: maxAttempts}
}

// matched records a response that advanced the transfer.
func (r *retryPolicy) matched() {
	r.attempt = 1
	r.received = true
}

// timedOut counts a timeout and reports whether the outgoing packet may be
// sent again.
func (r *retryPolicy) timedOut() bool {
	if !shouldRetry(KindTimeout, r.attempt, r.maxAttempts, r.received) {
		return false
	}

	r.attempt++

	return true
}
