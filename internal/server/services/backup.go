package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/tokenquest/internal/server/config"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/google/uuid"
)

// Seams over the AWS SDK so tests never reach the network.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// BackupTarget is where a client uploads one encrypted snapshot.
type BackupTarget struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type BackupService struct {
	config *sc.Config
	log    logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewBackupService(cfg *sc.Config, log logging.Logger) *BackupService {
	return &BackupService{
		config: cfg,
		log:    log.With("module", "backups"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// StorageKey returns backups/<user>/<yyyy-mm-dd>/<uuid>.
func (s *BackupService) StorageKey(userID string) string {
	return fmt.Sprintf("backups/%s/%s/%s", userID, s.now().UTC().Format(time.DateOnly), s.newID())
}

func (s *BackupService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignBackup issues a PUT URL for a fresh key under the user's prefix.
func (s *BackupService) PresignBackup(ctx context.Context, userID string) (*BackupTarget, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.StorageKey(userID)
	validity := s.config.BackupURLValidityDuration

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("application/octet-stream"),
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	s.log.Info(ctx, "backup url issued", "user_id", userID, "key", key)
	return &BackupTarget{Key: key, URL: req.URL, ExpiresAt: s.now().Add(validity).UTC()}, nil
}
