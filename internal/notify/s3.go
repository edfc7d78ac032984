package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// PutObjectAPI is the part of *s3.Client the outbox needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Settings points at an S3-compatible bucket (MinIO in development).
type S3Settings struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// NewS3Client builds a path-style client with static credentials.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.User, s.Password, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Message is the JSON document written to the outbox for a mailer to pick up.
type Message struct {
	To           string       `json:"to"`
	Subject      string       `json:"subject"`
	Body         string       `json:"body"`
	Registration Registration `json:"registration"`
}

// S3Outbox stores one JSON message per registration under
// activations/YYYY/MM/DD/<account id>.json.
type S3Outbox struct {
	client PutObjectAPI
	bucket string
}

func NewS3Outbox(client PutObjectAPI, bucket string) *S3Outbox {
	return &S3Outbox{client: client, bucket: bucket}
}

func (o *S3Outbox) NotifyRegistration(ctx context.Context, r Registration) error {
	body, err := json.Marshal(NewActivationMessage(r))
	if err != nil {
		return err
	}

	key := ObjectKey(r)
	_, err = o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// ObjectKey returns the outbox key for r.
func ObjectKey(r Registration) string {
	d := r.RegisteredAt.UTC()
	return fmt.Sprintf("activations/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), r.AccountID)
}

// NewActivationMessage renders the message text for r.
func NewActivationMessage(r Registration) Message {
	body := "Your account has been created."
	if r.ActivationLink != "" {
		body += "\n\nActivate it here: " + r.ActivationLink
	}
	return Message{
		To:           r.Email,
		Subject:      "Activate your account",
		Body:         body,
		Registration: r,
	}
}
