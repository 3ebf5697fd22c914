package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectModel(t *testing.T) {
	const (
		strong = "gpt-4o"
		weak   = "gpt-3.5-turbo"
	)

	tests := []struct {
		name       string
		category   TaskCategory
		complexity int
		want       string
	}{
		{"simple general", CategoryGeneral, 1, weak},
		{"moderate general", CategoryGeneral, 2, strong},
		{"complex general", CategoryGeneral, 3, strong},
		{"simple reasoning", CategoryReasoning, 1, strong},
		{"analysis alias", TaskCategory("analysis"), 1, strong},
		{"simple creative", CategoryCreative, 1, weak},
		{"moderate creative", CategoryCreative, 2, strong},
		{"simple technical", CategoryTechnical, 1, weak},
		{"complex technical", CategoryTechnical, 3, strong},
		{"unknown category", TaskCategory("banter"), 1, weak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SelectModel(strong, weak, tt.category, tt.complexity))
		})
	}
}

func TestParseIntent(t *testing.T) {
	require.Equal(t, IntentScheduleMeeting, ParseIntent("schedule_meeting"))
	require.Equal(t, IntentCreateImage, ParseIntent(" Create_Image "))
	require.Equal(t, IntentSearchRequest, ParseIntent("search_request"))
	require.Equal(t, IntentGeneralQuery, ParseIntent("general_query"))
	require.Equal(t, IntentGeneralQuery, ParseIntent("order_pizza"))
	require.Equal(t, IntentGeneralQuery, ParseIntent(""))
}
