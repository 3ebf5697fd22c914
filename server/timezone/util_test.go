package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty defaults to UTC", "", false},
		{"UTC", "UTC", false},
		{"valid zone", "Asia/Dhaka", false},
		{"another valid zone", "America/New_York", false},
		{"garbage", "Not/AZone", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, time.UTC, loc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, loc)
		})
	}
}

func TestResolveOrDefault(t *testing.T) {
	dhaka := MustParseTimezone("Asia/Dhaka")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid area/location", "America/New_York", "America/New_York"},
		{"no slash falls back", "EST", "Asia/Dhaka"},
		{"empty falls back", "", "Asia/Dhaka"},
		{"shaped but unloadable falls back", "Nowhere/Nothing", "Asia/Dhaka"},
		{"offset string falls back", "+06:00", "Asia/Dhaka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOrDefault(tt.input, dhaka)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone("Asia/Dhaka"))
	assert.True(t, IsValidTimezone("UTC"))
	assert.True(t, IsValidTimezone(""))
	assert.False(t, IsValidTimezone("Mars/Olympus_Mons"))
}
