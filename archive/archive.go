package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"tryon/shared/log"
	"tryon/stylist"
)

// Archive keeps a copy of every generated composite in S3. Uploads are best
// effort: a failure is logged and forgotten, the request never notices.
type Archive struct {
	s3     *s3.S3
	bucket string
	logger *zap.Logger
}

func New(s3Client *s3.S3, bucket string, logger *zap.Logger) *Archive {
	return &Archive{s3: s3Client, bucket: bucket, logger: logger.Named("archive")}
}

// Store uploads the composites under one request prefix. A nil archive
// means the sink is not configured and does nothing.
func (a *Archive) Store(ctx context.Context, requestID string, outfits []*stylist.Composite) {
	if a == nil {
		return
	}

	logger := log.LoggerWithTrace(ctx, a.logger)

	for idx, outfit := range outfits {
		key := fmt.Sprintf("tryon/%s/outfit-%d.%s", requestID, idx+1, extensionFor(outfit.MimeType))

		_, err := a.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(outfit.Data),
			ContentType: aws.String(outfit.MimeType),
		})
		if err != nil {
			logger.Warn(fmt.Sprintf("archive upload failed for %s: %s", key, err))
			continue
		}

		logger.Debug("archived " + key)
	}
}

func extensionFor(mimeType string) string {
	if ext, ok := strings.CutPrefix(mimeType, "image/"); ok && ext != "" {
		return ext
	}

	return "bin"
}
