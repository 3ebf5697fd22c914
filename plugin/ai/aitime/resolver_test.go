package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donna-ai/donna/plugin/ai"
)

const (
	componentPass = "Extract date components"
	isoPass       = "Convert natural language datetime"
)

func newTestResolver(mock *ai.MockLLMService, now time.Time) *Resolver {
	extractor := ai.NewExtractor(mock, "test-model")
	return NewResolver(extractor, DefaultPolicy()).WithNow(func() time.Time { return now })
}

func dhaka(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)
	return loc
}

func TestResolver_ExplicitDateAndTime(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 17}`
	mock.Responses[isoPass] = "2024-05-07T17:00:00+06:00"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "7 May 5pm", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, time.May, local.Month())
	assert.Equal(t, 7, local.Day())
	assert.Equal(t, 17, local.Hour())
}

func TestResolver_UTCOffsetConvertedToTargetZone(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 17}`
	mock.Responses[isoPass] = "2024-05-07T11:00:00Z"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "7 May 5pm", loc)
	require.NoError(t, err)
	assert.Equal(t, 17, got.In(loc).Hour())
}

func TestResolver_NoOffsetIsWallClockInTargetZone(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 17}`
	mock.Responses[isoPass] = "The answer is 2024-05-07T17:00:00, as requested."

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "7 May 5pm", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, 17, local.Hour())
	assert.Equal(t, 7, local.Day())
}

func TestResolver_CrossValidationMismatchFallsBack(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	// Primary silently substituted June for the stated May.
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 17}`
	mock.Responses[isoPass] = "2024-06-07T17:00:00+06:00"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "7 May 5pm", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, time.May, local.Month())
	assert.Equal(t, 7, local.Day())
	assert.Equal(t, 17, local.Hour())
}

func TestResolver_HourToleranceAbsorbsAMPMDrift(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 16}`
	mock.Responses[isoPass] = "2024-05-07T17:00:00+06:00"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "7 May around 5", loc)
	require.NoError(t, err)
	// One hour of drift is tolerated; the primary result stands.
	assert.Equal(t, 17, got.In(loc).Hour())
}

func TestResolver_PrimaryFailureUsesComponents(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7}`
	mock.Responses[isoPass] = "I am unable to convert that."

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "May 7th", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, time.May, local.Month())
	assert.Equal(t, 7, local.Day())
	// Missing hour defaults to noon.
	assert.Equal(t, 12, local.Hour())
	assert.Equal(t, 0, local.Minute())
}

func TestResolver_NothingExtractableFails(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = "no dates here"
	mock.Responses[isoPass] = "no dates here"

	_, err := newTestResolver(mock, now).Resolve(context.Background(), "sometime nice", loc)
	assert.ErrorIs(t, err, ErrNoResolution)
}

func TestResolver_EmptyInputFails(t *testing.T) {
	loc := dhaka(t)
	mock := ai.NewMockLLMService()

	_, err := newTestResolver(mock, time.Now()).Resolve(context.Background(), "  ", loc)
	assert.ErrorIs(t, err, ErrNoResolution)
	assert.Equal(t, 0, mock.CallCount())
}

func TestResolver_PastMonthDayRollsToNextYear(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	mock.Responses[componentPass] = `{"month": 5, "day": 7, "hour": 17}`
	mock.Responses[isoPass] = "not parseable"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "May 7th at 5pm", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, 2025, local.Year())
	assert.Equal(t, time.May, local.Month())
	assert.Equal(t, 7, local.Day())
}

func TestResolver_PastTimeOfDayTodayIsNotRolled(t *testing.T) {
	loc := dhaka(t)
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, loc)

	mock := ai.NewMockLLMService()
	// Today's date with an hour already gone.
	mock.Responses[componentPass] = `{"month": 6, "day": 15, "hour": 9}`
	mock.Responses[isoPass] = "not parseable"

	got, err := newTestResolver(mock, now).Resolve(context.Background(), "today at 9am", loc)
	require.NoError(t, err)

	local := got.In(loc)
	assert.Equal(t, 2024, local.Year())
	assert.Equal(t, 15, local.Day())
	assert.Equal(t, 9, local.Hour())
}

func TestComponentsFromMap(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		check func(t *testing.T, c DateComponents)
	}{
		{
			name:  "all fields",
			input: map[string]any{"month": float64(5), "day": float64(7), "hour": float64(17), "minute": float64(30)},
			check: func(t *testing.T, c DateComponents) {
				require.True(t, c.HasDate())
				assert.Equal(t, 5, *c.Month)
				assert.Equal(t, 30, *c.Minute)
			},
		},
		{
			name:  "string digits accepted",
			input: map[string]any{"month": "5", "day": "7"},
			check: func(t *testing.T, c DateComponents) {
				assert.True(t, c.HasDate())
			},
		},
		{
			name:  "out of range dropped",
			input: map[string]any{"month": float64(13), "hour": float64(25)},
			check: func(t *testing.T, c DateComponents) {
				assert.True(t, c.Empty())
			},
		},
		{
			name:  "empty map",
			input: map[string]any{},
			check: func(t *testing.T, c DateComponents) {
				assert.True(t, c.Empty())
				assert.False(t, c.HasDate())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ComponentsFromMap(tt.input))
		})
	}
}
