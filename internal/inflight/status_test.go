package inflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "confirmed", StatusConfirmed.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

func TestCombine(t *testing.T) {
	tests := []struct {
		a, b Status
		want Status
	}{
		{StatusIdle, StatusIdle, StatusIdle},
		{StatusConfirmed, StatusIdle, StatusConfirmed},
		{StatusIdle, StatusFailed, StatusFailed},
		{StatusConfirmed, StatusFailed, StatusFailed},
		{StatusPending, StatusConfirmed, StatusPending},
		{StatusFailed, StatusPending, StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.a, tt.b))
			assert.Equal(t, tt.want, Combine(tt.b, tt.a))
		})
	}
}
