// Package logging routes the standard logger (and gin's access log) to
// stderr and, optionally, a size-rotated file.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Setup points log and gin output at stderr plus the rotating file named by
// cfg.File. The returned closer flushes and closes the file; it is a no-op
// when no file is configured.
func Setup(cfg config.Logging) io.Closer {
	if cfg.File == "" {
		return nopCloser{}
	}

	rotation := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}

	out := io.MultiWriter(os.Stderr, rotation)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out

	log.Printf("Logging to %s (max %d MB, %d backups)", cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
	return rotation
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
