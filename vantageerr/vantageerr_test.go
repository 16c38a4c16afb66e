package vantageerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfRecoversWrappedKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(NetworkError, "fetch %s failed: %w", "AAPL", cause)

	assert.Equal(t, NetworkError, KindOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestKindOfDefaultsToProgrammerForUntaggedErrors(t *testing.T) {
	assert.Equal(t, Programmer, KindOf(errors.New("untagged")))
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(New(NetworkError, "x")))
	assert.True(t, Recoverable(New(InvalidInput, "x")))
	assert.False(t, Recoverable(New(DeviceLost, "x")))
	assert.False(t, Recoverable(New(Programmer, "x")))
}
