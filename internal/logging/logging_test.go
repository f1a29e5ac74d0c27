package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
)

func restoreOutput(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		gin.DefaultWriter = os.Stdout
		gin.DefaultErrorWriter = os.Stderr
	})
}

func TestSetup_WritesToFile(t *testing.T) {
	restoreOutput(t)
	path := filepath.Join(t.TempDir(), "bookshelf.log")

	closer := Setup(config.Logging{File: path, MaxSizeMB: 1, MaxBackups: 1})
	log.Printf("hello from the test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
	assert.Contains(t, string(data), "Logging to")
}

func TestSetup_NoFile(t *testing.T) {
	restoreOutput(t)

	closer := Setup(config.Logging{})
	assert.NoError(t, closer.Close())
}
