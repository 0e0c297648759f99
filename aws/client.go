package aws

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rs/zerolog/log"

	"github.com/djelia-org/djelia-go"
)

// S3Sink uploads synthesized speech to a bucket and returns its public URL.
// It satisfies djelia.SpeechSink.
type S3Sink struct {
	bucket   string
	region   string
	prefix   string
	uploader s3manageriface.UploaderAPI
	s3Client s3iface.S3API
	now      func() time.Time
}

func NewS3Sink(region, bucket string) (*S3Sink, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	log.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("AWS session created successfully")

	return NewS3SinkWithClients(region, bucket, s3manager.NewUploader(sess), s3.New(sess)), nil
}

func NewS3SinkWithClients(region, bucket string, uploader s3manageriface.UploaderAPI, s3Client s3iface.S3API) *S3Sink {
	return &S3Sink{
		bucket:   bucket,
		region:   region,
		prefix:   "audio/speech",
		uploader: uploader,
		s3Client: s3Client,
		now:      time.Now,
	}
}

// ForSpeaker returns a copy of the sink whose object keys carry the speaker id.
func (s *S3Sink) ForSpeaker(speaker int) djelia.SpeechSink {
	cp := *s
	cp.prefix = fmt.Sprintf("audio/speaker%d", speaker)
	return &cp
}

func (s *S3Sink) Save(ctx context.Context, audio []byte) (string, error) {
	key := fmt.Sprintf("%s_%d.wav", s.prefix, s.now().Unix())

	log.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("content_size", len(audio)).
		Msg("Starting S3 upload")

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String("audio/wav"),
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("region", s.region).
			Str("key", key).
			Msg("S3 upload failed")
		return "", fmt.Errorf("failed to upload audio to S3: %w", err)
	}

	_, aclErr := s.s3Client.PutObjectAclWithContext(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	})
	if aclErr != nil {
		log.Warn().
			Err(aclErr).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("Failed to set public-read ACL on uploaded object, file may not be publicly accessible")
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)

	log.Info().
		Str("s3_url", publicURL).
		Str("s3_location", result.Location).
		Msg("Audio uploaded to S3 successfully")

	return publicURL, nil
}
