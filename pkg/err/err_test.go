package errprocess

import (
	"errors"
	"testing"

	"trading_hub/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	logger.SetNewNop()
	base := errors.New("connection reset")

	err := Wrap("unread increment", base)
	assert.ErrorIs(t, err, base)
	assert.EqualError(t, err, "unread increment: connection reset")

	assert.NoError(t, Wrap("noop", nil))
	assert.EqualError(t, Set("bad frame"), "bad frame")
}
