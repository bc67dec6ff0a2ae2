package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		attempt  int
		received bool
		want     bool
	}{
		{name: "first timeout before any response", kind: KindTimeout, attempt: 1, received: false, want: false},
		{name: "timeout after a response", kind: KindTimeout, attempt: 1, received: true, want: true},
		{name: "last allowed retry", kind: KindTimeout, attempt: 4, received: true, want: true},
		{name: "attempts exhausted", kind: KindTimeout, attempt: 5, received: true, want: false},
		{name: "protocol error", kind: KindProtocol, attempt: 1, received: true, want: false},
		{name: "server error", kind: KindServer, attempt: 1, received: true, want: false},
		{name: "encoding error", kind: KindEncoding, attempt: 1, received: true, want: false},
		{name: "integrity error", kind: KindIntegrity, attempt: 1, received: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(tt.kind, tt.attempt, 5, tt.received))
		})
	}
}

func TestRetryPolicyCounts(t *testing.T) {
	r := newRetryPolicy(5)
	assert.False(t, r.timedOut(), "no response yet")

	r.matched()

	retries := 0
	for r.timedOut() {
		retries++
	}

	assert.Equal(t, 4, retries)
	assert.Equal(t, 5, r.attempt)

	r.matched()
	assert.Equal(t, 1, r.attempt)
	assert.True(t, r.timedOut())
}

func TestRetryPolicyMinimumAttempts(t *testing.T) {
	r := newRetryPolicy(0)
	r.matched()
	assert.False(t, r.timedOut())
}
