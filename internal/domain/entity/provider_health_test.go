package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthPolicyVerdict(t *testing.T) {
	policy := DefaultHealthPolicy()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		record   *ProviderHealth
		expected bool
	}{
		{
			name:     "Absent Record Is Healthy",
			record:   nil,
			expected: true,
		},
		{
			name: "Healthy Record",
			record: &ProviderHealth{
				Provider:      ProviderMpesa,
				IsHealthy:     true,
				LastCheckedAt: now.Add(-time.Minute),
			},
			expected: true,
		},
		{
			name: "Failure Streak At Threshold",
			record: &ProviderHealth{
				Provider:            ProviderMpesa,
				IsHealthy:           true,
				ConsecutiveFailures: 3,
				LastCheckedAt:       now.Add(-time.Minute),
			},
			expected: false,
		},
		{
			name: "Failure Streak Below Threshold",
			record: &ProviderHealth{
				Provider:            ProviderMpesa,
				IsHealthy:           true,
				ConsecutiveFailures: 2,
				LastCheckedAt:       now.Add(-time.Minute),
			},
			expected: true,
		},
		{
			name: "Unhealthy Record",
			record: &ProviderHealth{
				Provider:      ProviderMpesa,
				IsHealthy:     false,
				LastCheckedAt: now.Add(-time.Minute),
			},
			expected: false,
		},
		{
			name: "Stale Bad Signal Stays Bad",
			record: &ProviderHealth{
				Provider:      ProviderMpesa,
				IsHealthy:     false,
				LastCheckedAt: now.Add(-10 * time.Minute),
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Verdict(tt.record, now))
		})
	}
}

func TestRecordSuccessResetsStreak(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &ProviderHealth{
		Provider:            ProviderMpesa,
		IsHealthy:           false,
		ConsecutiveFailures: 5,
		LastError:           "timeout",
	}

	record.RecordSuccess(now, 120*time.Millisecond)

	assert.True(t, record.IsHealthy)
	assert.Equal(t, 0, record.ConsecutiveFailures)
	assert.Equal(t, "", record.LastError)
	assert.Equal(t, now, record.LastCheckedAt)
	assert.Equal(t, 120*time.Millisecond, record.LastResponseTime)
	assert.NotNil(t, record.LastSuccessAt)
}

func TestRecordFailureFlagsUnhealthyAtThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &ProviderHealth{Provider: ProviderMpesa, IsHealthy: true}

	record.RecordFailure(now, time.Second, "timeout", 3)
	assert.True(t, record.IsHealthy)
	assert.Equal(t, 1, record.ConsecutiveFailures)

	record.RecordFailure(now, time.Second, "timeout", 3)
	assert.True(t, record.IsHealthy)

	record.RecordFailure(now, time.Second, "timeout", 3)
	assert.False(t, record.IsHealthy)
	assert.Equal(t, 3, record.ConsecutiveFailures)
	assert.Equal(t, "timeout", record.LastError)
	assert.NotNil(t, record.LastFailureAt)
}
