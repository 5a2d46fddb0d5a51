// Package adapters contains thin cross-module glue that keeps bounded
// contexts decoupled from each other's concrete types.
package adapters

import (
	"context"
	"fmt"
	"mime"

	"github.com/google/uuid"

	"fieldops_backend/internal/calls/ringcentral"
	"fieldops_backend/internal/calls/service"
	"fieldops_backend/internal/storage"
)

// RecordingArchiver copies RingCentral call recordings into object storage.
type RecordingArchiver struct {
	client *ringcentral.Client
	store  storage.StorageService
	bucket string
}

var _ service.RecordingArchiver = (*RecordingArchiver)(nil)

func NewRecordingArchiver(client *ringcentral.Client, store storage.StorageService, bucket string) *RecordingArchiver {
	return &RecordingArchiver{client: client, store: store, bucket: bucket}
}

// Archive streams a recording from the provider into the recordings bucket
// and returns the object key.
func (a *RecordingArchiver) Archive(ctx context.Context, organizationID uuid.UUID, accessToken, recordingID string) (string, error) {
	body, contentType, err := a.client.DownloadRecording(ctx, accessToken, recordingID)
	if err != nil {
		return "", err
	}
	defer body.Close()

	ext := ".mp3"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}

	folder := organizationID.String()
	fileName := fmt.Sprintf("%s%s", recordingID, ext)

	// Size is unknown; MinIO streams with -1.
	return a.store.UploadFile(ctx, a.bucket, folder, fileName, contentType, body, -1)
}
