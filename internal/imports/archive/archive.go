// Package archive keeps a copy of every uploaded workbook in object
// storage, so a disputed import can be replayed against the exact file.
package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MinioArchiver stores uploads under imports/yyyy/mm/dd/<id><ext>.
type MinioArchiver struct {
	client *minio.Client
	bucket string
}

func NewMinioArchiver(client *minio.Client, bucket string) *MinioArchiver {
	return &MinioArchiver{client: client, bucket: bucket}
}

func (a *MinioArchiver) Archive(ctx context.Context, name string, r io.Reader, size int64) error {
	objectName := fmt.Sprintf("imports/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(name))
	_, err := a.client.PutObject(ctx, a.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentTypeXLSX,
	})
	if err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}
	return nil
}
