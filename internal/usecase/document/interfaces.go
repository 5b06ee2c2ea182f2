package document

import (
	"context"
)

type ContentStore interface {
	ReadObject(ctx context.Context, path string) ([]byte, error)
}

type TextExtractor interface {
	Extract(name string, content []byte) (string, error)
}
