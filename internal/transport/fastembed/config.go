// Package fastembed runs embedding models locally through ONNX Runtime.
package fastembed

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

const provider = "fastembed"

// ErrFastEmbedUnavailable is returned when the binary was built without cgo.
var ErrFastEmbedUnavailable = errors.New("fastembed: not available (binary built without cgo, use the tei provider instead)")

// Config holds the FastEmbed provider settings.
type Config struct {
	Model     string
	CacheDir  string
	MaxLength int
	Pooling   domain.Pooling
	Logger    *zap.Logger
}

// builtinPooling is the pooling the bundled ONNX models apply; it cannot be changed.
const builtinPooling = domain.PoolingCLS

func (c *Config) maxLength() int {
	if c.MaxLength > 0 {
		return c.MaxLength
	}
	return domain.MaxSequenceTokens
}

func (c *Config) cacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return "local_cache"
}

// warnPooling logs when the configured pooling differs from what the model does.
func (c *Config) warnPooling() {
	if c.Logger == nil || c.Pooling == "" || c.Pooling == builtinPooling {
		return
	}
	c.Logger.Warn("fastembed models use fixed pooling, configured pooling ignored",
		zap.String("configured", string(c.Pooling)),
		zap.String("effective", string(builtinPooling)),
	)
}
