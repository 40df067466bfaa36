// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/modos-dev/modos/config"
)

// S3Backend stores an archive under a bucket/prefix on an S3-compatible
// object store (MinIO included).
type S3Backend struct {
	client *s3.Client
	opts   config.S3Config
	bucket string
	prefix string
}

// NewS3Backend opens an archive at the given S3 location. The location is
// either "s3://bucket/prefix" or "bucket/prefix"; the endpoint and
// credentials come from opts.
func NewS3Backend(ctx context.Context, location string, opts config.S3Config) (*S3Backend, error) {
	bucket, prefix, err := ParseS3Path(location)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &S3Backend{
		client: client,
		opts:   opts,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// ParseS3Path splits an S3 location into bucket and key prefix. A leading
// "s3://" scheme is accepted and stripped.
func ParseS3Path(location string) (bucket, prefix string, err error) {
	trimmed := strings.TrimPrefix(location, "s3://")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" || strings.Contains(trimmed, "//") {
		return "", "", InvalidS3PathError{Path: location}
	}
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", InvalidS3PathError{Path: location}
	}
	return bucket, prefix, nil
}

// newS3Client assembles an aws-sdk-go-v2 client honoring a custom endpoint,
// path-style addressing, and static or anonymous credentials.
func newS3Client(ctx context.Context, opts config.S3Config) (*s3.Client, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if opts.Anonymous {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	} else if opts.AccessKeyId != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKeyId, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("Couldn't load S3 configuration: %s", err.Error())
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.PathStyle {
			o.UsePathStyle = true
		}
	})
	return client, nil
}

func (b *S3Backend) Path() string {
	if b.prefix == "" {
		return b.bucket
	}
	return b.bucket + "/" + b.prefix
}

func (b *S3Backend) URL() string {
	if b.opts.Endpoint != "" {
		endpoint := strings.TrimSuffix(b.opts.Endpoint, "/")
		return endpoint + "/" + b.Path()
	}
	return "s3://" + b.Path()
}

// key maps an archive-relative path to an object key.
func (b *S3Backend) key(rel string) (string, error) {
	rel, err := cleanRel(rel)
	if err != nil {
		return "", err
	}
	if b.prefix == "" {
		return rel, nil
	}
	return b.prefix + "/" + rel, nil
}

func (b *S3Backend) Exists(ctx context.Context, rel string) (bool, error) {
	key, err := b.key(rel)
	if err != nil {
		return false, err
	}
	_, err = b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *S3Backend) Size(ctx context.Context, rel string) (int64, error) {
	key, err := b.key(rel)
	if err != nil {
		return 0, err
	}
	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotExist(err) {
			return 0, NotExistError{Path: rel}
		}
		return 0, err
	}
	return aws.ToInt64(head.ContentLength), nil
}

func (b *S3Backend) Put(ctx context.Context, localSrc, rel string) error {
	key, err := b.key(rel)
	if err != nil {
		return err
	}
	source, err := os.Open(localSrc)
	if err != nil {
		return err
	}
	defer source.Close()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   source,
	})
	return err
}

func (b *S3Backend) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	key, err := b.key(rel)
	if err != nil {
		return nil, err
	}
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotExist(err) {
			return nil, NotExistError{Path: rel}
		}
		return nil, err
	}
	return output.Body, nil
}

func (b *S3Backend) Remove(ctx context.Context, rel string) error {
	exists, err := b.Exists(ctx, rel)
	if err != nil {
		return err
	}
	if !exists {
		slog.Warn(fmt.Sprintf("File %s does not exist, skipping removal", rel))
		return nil
	}
	return b.RemoveObject(ctx, rel)
}

func (b *S3Backend) Move(ctx context.Context, oldRel, newRel string) error {
	oldKey, err := b.key(oldRel)
	if err != nil {
		return err
	}
	newKey, err := b.key(newRel)
	if err != nil {
		return err
	}
	source := url.PathEscape(b.bucket + "/" + oldKey)
	_, err = b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(newKey),
		CopySource: aws.String(source),
	})
	if err != nil {
		return err
	}
	return b.RemoveObject(ctx, oldRel)
}

func (b *S3Backend) List(ctx context.Context, sub string) ([]string, error) {
	keys, err := b.listKeys(ctx, sub)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, key := range keys {
		if key == MetaRoot || strings.HasPrefix(key, MetaRoot+"/") {
			continue
		}
		files = append(files, key)
	}
	return files, nil
}

func (b *S3Backend) ReadObject(ctx context.Context, rel string) ([]byte, error) {
	body, err := b.Open(ctx, rel)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (b *S3Backend) WriteObject(ctx context.Context, rel string, data []byte) error {
	key, err := b.key(rel)
	if err != nil {
		return err
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(string(data)),
	})
	return err
}

func (b *S3Backend) RemoveObject(ctx context.Context, rel string) error {
	key, err := b.key(rel)
	if err != nil {
		return err
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (b *S3Backend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	return b.listKeys(ctx, prefix)
}

func (b *S3Backend) RemovePrefix(ctx context.Context, prefix string) error {
	keys, err := b.listKeys(ctx, prefix)
	if err != nil {
		return err
	}
	for len(keys) > 0 {
		batch := keys
		if len(batch) > 1000 { // DeleteObjects caps batches at 1000 keys
			batch = batch[:1000]
		}
		keys = keys[len(batch):]
		objects := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			full, err := b.key(key)
			if err != nil {
				return err
			}
			objects[i] = types.ObjectIdentifier{Key: aws.String(full)}
		}
		_, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *S3Backend) Empty(ctx context.Context) (bool, error) {
	return emptyStore(ctx, b)
}

// listKeys pages through every object under the archive prefix (plus sub,
// if given), returning archive-relative paths.
func (b *S3Backend) listKeys(ctx context.Context, sub string) ([]string, error) {
	prefix := b.prefix
	if sub != "" {
		cleaned, err := cleanRel(sub)
		if err != nil {
			return nil, err
		}
		if prefix == "" {
			prefix = cleaned
		} else {
			prefix = prefix + "/" + cleaned
		}
	}
	if prefix != "" {
		prefix += "/"
	}
	var keys []string
	var token *string
	for {
		page, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			rel := strings.TrimPrefix(key, b.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel == "" {
				continue
			}
			keys = append(keys, rel)
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}
	return keys, nil
}

// ListS3Archives lists the top-level archive prefixes under a bucket,
// used by the catalog service to enumerate served archives.
func ListS3Archives(ctx context.Context, bucket string, opts config.S3Config) ([]string, error) {
	client, err := newS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	var archives []string
	var token *string
	for {
		page, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, prefix := range page.CommonPrefixes {
			name := strings.TrimSuffix(aws.ToString(prefix.Prefix), "/")
			if name == "" {
				continue
			}
			archives = append(archives, bucket+"/"+name)
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}
	return archives, nil
}
