package installd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyStatus(t *testing.T) {
	ok := reply{Ok: true}
	require.NoError(t, ok.status("createAppData"))

	failed := reply{Ok: false, Error: "unable to prepare CE storage"}
	err := failed.status("createAppData")
	require.Error(t, err)

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, "createAppData", status.Op)
	assert.Contains(t, err.Error(), "unable to prepare CE storage")

	// A daemon that reports failure without a message still names the op.
	bare := reply{}
	assert.EqualError(t, bare.status("freeCache"), "installd freeCache failed")
}

func TestCodecRegisteredName(t *testing.T) {
	assert.Equal(t, "json", jsonCodec{}.Name())
}

func TestBuildCommandNullArgs(t *testing.T) {
	line := buildCommand("dexopt", "/data/app/base.apk", 10012, "", "arm64", 1, "", 0, "speed", "", "")
	assert.Equal(t, "dexopt /data/app/base.apk 10012 ! arm64 1 ! 0 speed ! !", line)
}
