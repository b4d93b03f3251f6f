package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomStatus_CanAdvanceTo(t *testing.T) {
	req := require.New(t)

	req.True(StatusWaiting.CanAdvanceTo(StatusStarted))
	req.True(StatusStarted.CanAdvanceTo(StatusSettled))
	req.True(StatusWaiting.CanAdvanceTo(StatusSettled))

	// The lifecycle never moves backwards or stands still
	req.False(StatusStarted.CanAdvanceTo(StatusWaiting))
	req.False(StatusSettled.CanAdvanceTo(StatusStarted))
	req.False(StatusWaiting.CanAdvanceTo(StatusWaiting))
}
