// Package contentstore reads uploaded project documents from where they are kept:
// a local directory, a remote object service, or memory.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/integration/common"
	pkgRetry "github.com/futig/schedule-backend/internal/pkg/retry"
	pkghttp "github.com/futig/schedule-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector fetches objects from a remote content service.
type Connector struct {
	config    config.ContentStoreConfig
	connector *pkghttp.Connector
	maxBytes  int64
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ContentStoreConfig,
	maxBytes int64,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// ReadObject downloads one object.
// GET {object_endpoint} with {path} substituted
// Transient failures are retried; a 404 or any other client error is final.
func (c *Connector) ReadObject(ctx context.Context, path string) ([]byte, error) {
	endpoint := strings.Replace(c.config.ObjectEndpoint, "{path}", escapePath(path), 1)

	ctxzap.Debug(ctx, "reading object from content store", zap.String("path", path))

	content, err := pkgRetry.Do(ctx, &c.config.Retry, permanent, func() ([]byte, error) {
		body, err := c.connector.DoRawRequest(ctx, http.MethodGet, endpoint,
			pkghttp.WithHeader("Accept", "application/octet-stream"),
			pkghttp.WithMaxResponseBytes(c.maxBytes),
		)
		if code, ok := pkghttp.StatusCode(err); ok && code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", entity.ErrObjectNotFound, path)
		}
		return body, err
	})
	if err != nil {
		ctxzap.Warn(ctx, "failed to read object", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("read object %q: %w", path, err)
	}

	ctxzap.Debug(ctx, "object read", zap.String("path", path), zap.Int("size", len(content)))
	return content, nil
}

func permanent(err error) bool {
	var tooLarge *pkghttp.ResponseTooLargeError
	return errors.Is(err, entity.ErrObjectNotFound) || errors.As(err, &tooLarge) || pkghttp.IsClientError(err)
}

func escapePath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
