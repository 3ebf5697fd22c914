package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAssistantError_CodeQueries(t *testing.T) {
	cause := pkgerrors.New("connection refused")
	err := Gateway("model call failed", cause)

	require.True(t, IsCode(err, ErrCodeGateway))
	require.False(t, IsCode(err, ErrCodeProvider))
	require.Equal(t, ErrCodeGateway, GetCodeFromError(err, ErrCodeInvalidArgument))
	require.ErrorIs(t, err, cause)
}

func TestAssistantError_WrappedCodeSurvives(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Resolution("no datetime could be derived"))

	require.True(t, IsCode(err, ErrCodeResolution))
	require.Equal(t, ErrCodeResolution, GetCodeFromError(err, ErrCodeGateway))
}

func TestGetCodeFromError_DefaultForPlainErrors(t *testing.T) {
	err := pkgerrors.New("something else")
	require.Equal(t, ErrCodeInvalidArgument, GetCodeFromError(err, ErrCodeInvalidArgument))
	require.False(t, IsCode(err, ErrCodeGateway))
}

func TestAssistantError_Message(t *testing.T) {
	require.Equal(t, "[UNAUTHORIZED] token expired", Unauthorized("token expired").Error())
	require.Equal(t, "[PROVIDER_ERROR] insert rejected: status 500",
		Provider("insert rejected", pkgerrors.New("status 500")).Error())
}
