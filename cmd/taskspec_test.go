package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskSpec(t *testing.T) {
	task, err := parseTaskSpec("sensor 2.5 10 10 1")
	require.NoError(t, err)

	assert.Equal(t, "sensor", task.Name)
	assert.Equal(t, 2.5, task.ExecutionTime)
	assert.Equal(t, 10.0, task.Period)
	assert.Equal(t, 10.0, task.RelativeDeadline)
	assert.Equal(t, 1, task.BasePriority)
	assert.Equal(t, 0.0, task.ArrivalTime)
}

func TestParseTaskSpec_OptionalArrival(t *testing.T) {
	task, err := parseTaskSpec("burst 1 0 4 3 7.5")
	require.NoError(t, err)
	assert.Equal(t, 7.5, task.ArrivalTime)
	assert.Equal(t, 0.0, task.Period, "period 0 means one-shot")
}

func TestParseTaskSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"too few fields", "a 1 0 4"},
		{"bad exec time", "a x 0 4 1"},
		{"bad period", "a 1 x 4 1"},
		{"bad deadline", "a 1 0 x 1"},
		{"bad priority", "a 1 0 4 x"},
		{"bad arrival", "a 1 0 4 1 x"},
		{"zero exec time", "a 0 0 4 1"},
		{"zero deadline", "a 1 0 0 1"},
		{"negative arrival", "a 1 0 4 1 -2"},
		{"negative period", "a 1 -5 4 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTaskSpec(tc.spec)
			assert.Error(t, err, "spec %q should be rejected", tc.spec)
		})
	}
}
