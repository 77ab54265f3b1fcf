package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndReasonShouldAdvance(t *testing.T) {
	tests := []struct {
		reason   EndReason
		expected bool
	}{
		{reason: ReasonFinished, expected: true},
		{reason: ReasonLoadFailed, expected: true},
		{reason: ReasonStopped, expected: false},
		{reason: ReasonReplaced, expected: false},
		{reason: ReasonCleanup, expected: false},
		{reason: EndReason("somethingNew"), expected: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.ShouldAdvance())
		})
	}
}
