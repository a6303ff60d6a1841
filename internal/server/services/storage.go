package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/DeepaPrasanna/social-media/internal/server/config"
)

// Seams for testing the AWS client plumbing without network access.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, in)
	}
)

// ProfilePictureStore writes profile pictures to an S3-compatible bucket
// and returns their public URLs.
type ProfilePictureStore struct {
	config *sc.Config
}

// NewProfilePictureStore constructs a store from the immutable S3 settings.
func NewProfilePictureStore(cfg *sc.Config) *ProfilePictureStore {
	return &ProfilePictureStore{config: cfg}
}

func (p *ProfilePictureStore) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(p.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3AccessKeyID,
			p.config.S3SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// storageKey prefixes the original filename with a random id so two users
// uploading "avatar.png" never clobber each other.
func storageKey(filename string) string {
	return fmt.Sprintf("profile-pictures/%s-%s", uuid.New(), filename)
}

// Put uploads the picture and returns its URL.
func (p *ProfilePictureStore) Put(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := storageKey(filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.config.S3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return p.objectURL(key), nil
}

func (p *ProfilePictureStore) objectURL(key string) string {
	return strings.TrimSuffix(p.config.S3BaseEndpoint, "/") + "/" + p.config.S3Bucket + "/" + key
}
