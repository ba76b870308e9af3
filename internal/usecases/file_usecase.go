package usecases

import (
	"context"
	"strings"

	domainerrors "sportsadmin.backend/internal/domain/errors"
)

// FileUsecase resolves stored workflow files to download links
type FileUsecase struct {
	blobs BlobStore
}

func NewFileUsecase(blobs BlobStore) *FileUsecase {
	return &FileUsecase{blobs: blobs}
}

// DownloadURL returns a short-lived link for fileID.
func (u *FileUsecase) DownloadURL(ctx context.Context, fileID string) (string, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return "", domainerrors.NotFound("file not found")
	}
	return u.blobs.URL(ctx, fileID)
}
