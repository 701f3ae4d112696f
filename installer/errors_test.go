package installer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, "invalid_argument", InvalidArgument.String())
	assert.Equal(t, "remote_operation_failed", RemoteOperationFailed.String())
	assert.Equal(t, "malformed_response", MalformedResponse.String())
}

func TestKindHelpersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("installing com.example.app: %w", remoteError(errors.New("daemon gone")))
	assert.True(t, IsRemoteOperationFailed(err))
	assert.False(t, IsInvalidArgument(err))
	assert.False(t, IsMalformedResponse(err))

	assert.False(t, IsRemoteOperationFailed(errors.New("plain")))
	assert.False(t, IsRemoteOperationFailed(nil))
}

func TestRemoteErrorKeepsCause(t *testing.T) {
	cause := errors.New("transport reset")
	err := remoteError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transport reset", err.Error())
}
