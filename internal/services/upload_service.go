package services

import (
	"bufio"
	"context"
	"io"

	"github.com/diero-hl/agentclaw/internal/storage"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxImageSize = 5 << 20
	sniffBytes   = 3072
)

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadService interface {
	// UploadImage stores an agent or avatar image and returns its public URL.
	UploadImage(ctx context.Context, size int64, r io.Reader) (string, error)
}

type uploadService struct {
	uploader storage.Uploader
}

// NewUploadService accepts a nil uploader; uploads then fail as unavailable.
func NewUploadService(uploader storage.Uploader) UploadService {
	return &uploadService{uploader: uploader}
}

func (s *uploadService) UploadImage(ctx context.Context, size int64, r io.Reader) (string, error) {
	const op = "UploadService.UploadImage"

	if s.uploader == nil {
		return "", utils.E(utils.CodeUnavailable, op, "image uploads are not configured", nil)
	}
	if size <= 0 || size > MaxImageSize {
		return "", utils.Invalid(op, "file too large (max 5MB)", []utils.FieldError{{
			Field: "file", Rule: "max", Message: "file must be between 1 byte and 5MB",
		}}, nil)
	}

	br := bufio.NewReaderSize(r, sniffBytes)
	head, _ := br.Peek(sniffBytes)
	ct := mimetype.Detect(head).String()
	ext, ok := imageExt[ct]
	if !ok {
		return "", utils.Invalid(op, "unsupported image type", []utils.FieldError{{
			Field: "file", Rule: "mime", Message: "file must be png, jpeg, gif or webp",
		}}, nil)
	}

	objectName := "agents/images/" + uuid.NewString() + ext
	url, err := s.uploader.Upload(ctx, objectName, ct, io.LimitReader(br, MaxImageSize))
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}
	return url, nil
}
