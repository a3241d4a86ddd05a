package storage

import (
	"context"
	"io"
)

type Uploader interface {
	// Upload writes r under objectName and returns the URL clients fetch it from.
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}
