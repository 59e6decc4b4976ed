// Package source reads and writes raw MIDI buffers on local disk or in S3
// (s3://bucket/key).
package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jsphweid/staffdex/constants"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const s3Scheme = "s3://"

type Source struct {
	client s3iface.S3API
}

// New builds a source whose S3 client is configured from AWS_REGION and
// S3_ENDPOINT.
func New() (*Source, error) {
	cfg := &aws.Config{
		Region: aws.String(constants.GetAwsRegion()),
	}
	if endpoint := constants.GetS3Endpoint(); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create aws session")
	}
	return NewWithClient(s3.New(sess)), nil
}

func NewWithClient(client s3iface.S3API) *Source {
	return &Source{client: client}
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, s3Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func isS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

func (s *Source) Read(ctx context.Context, uri string) ([]byte, error) {
	if !isS3(uri) {
		dat, err := os.ReadFile(uri)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %v", uri)
		}
		return dat, nil
	}

	bucket, key, ok := ParseS3URI(uri)
	if !ok {
		return nil, errors.Errorf("bad s3 uri %q", uri)
	}
	logrus.WithFields(logrus.Fields{"bucket": bucket, "key": key}).Debug("fetching midi from s3")
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not get %v", uri)
	}
	defer out.Body.Close()

	dat, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read body of %v", uri)
	}
	return dat, nil
}

func (s *Source) Write(ctx context.Context, uri string, data []byte) error {
	if !isS3(uri) {
		if err := os.WriteFile(uri, data, 0644); err != nil {
			return errors.Wrapf(err, "could not write %v", uri)
		}
		return nil
	}

	bucket, key, ok := ParseS3URI(uri)
	if !ok {
		return errors.Errorf("bad s3 uri %q", uri)
	}
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/midi"),
	})
	if err != nil {
		return errors.Wrapf(err, "could not put %v", uri)
	}
	return nil
}
