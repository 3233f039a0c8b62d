// internal/logging/loggingtest/loggingtest_test.go

package loggingtest

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"lockstep/internal/logging"
)

func TestTestLoggerIntoContext(t *testing.T) {
	ctx := NewTestLoggerIntoContext(context.Background(), t)
	logger := logr.FromContextOrDiscard(ctx)
	assert.True(t, logger.V(logging.TRACE).Enabled())
	assert.False(t, logger.V(logging.TRACE+1).Enabled())
	logger.V(logging.TRACE).Info("trace enabled in tests")
}
