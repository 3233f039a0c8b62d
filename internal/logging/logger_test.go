// internal/logging/logger_test.go

package logging

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, levelFor(0))
	assert.Equal(t, zapcore.InfoLevel, levelFor(-3))
	assert.Equal(t, zapcore.Level(-DEBUG), levelFor(DEBUG))
	assert.Equal(t, zapcore.Level(-127), levelFor(1000))
}

func TestNewLoggerVerbosity(t *testing.T) {
	logger, sync, err := NewLogger(VERBOSE, true)
	require.NoError(t, err)
	defer sync()

	assert.True(t, logger.V(DEFAULT).Enabled())
	assert.True(t, logger.V(VERBOSE).Enabled())
	assert.False(t, logger.V(DEBUG).Enabled())
}

// TestPackageDoesNotImportTesting 確保非測試檔不會把 testing 與 zaptest 帶進正式執行檔。
func TestPackageDoesNotImportTesting(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotEqual(t, "testing", path, name)
			assert.NotEqual(t, "go.uber.org/zap/zaptest", path, name)
		}
	}
}
