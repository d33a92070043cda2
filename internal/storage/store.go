// Package storage implements the remote folder/file store on top of
// S3-compatible object storage. A "folder" is a key prefix holding a zero
// byte marker object, so folder ids are prefixes ending in "/".
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const folderMarker = ".keep"

// FolderRef identifies a remote folder. ID is the full key prefix.
type FolderRef struct {
	ID   string
	Name string
}

// UploadResult is the outcome of one whole-file transfer attempt.
// RemoteSize is the size the store reports for the stored object and is
// only meaningful when Completed is true.
type UploadResult struct {
	Completed  bool
	RemoteSize int64
}

// ProgressFunc receives the transferred fraction of the current file in [0,1].
type ProgressFunc func(fraction float64)

type Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	PartSize     int64
}

// S3Store talks to one bucket. The multipart uploader gives chunk-level
// retry/resume; callers only retry whole files.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true // minio
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
	})

	return &S3Store{client: client, uploader: uploader, bucket: cfg.Bucket}, nil
}

// ListFoldersByName returns the folders directly under parentID whose base
// name equals name. Suffixed variants created by CreateFolder for duplicate
// names count as distinct folders and are not returned here.
func (s *S3Store) ListFoldersByName(ctx context.Context, name, parentID string) ([]FolderRef, error) {
	prefix := normalizePrefix(parentID)

	var out []FolderRef
	var token *string
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list folders under %q: %w", prefix, err)
		}

		for _, cp := range resp.CommonPrefixes {
			p := aws.ToString(cp.Prefix)
			base := path.Base(strings.TrimSuffix(p, "/"))
			if base == name {
				out = append(out, FolderRef{ID: p, Name: base})
			}
		}

		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		token = resp.NextContinuationToken
	}

	return out, nil
}

// CreateFolder creates a new folder named name under parentID and returns
// its ref. If the natural prefix is already occupied, a short random suffix
// keeps the new folder distinct (object keys cannot repeat the way folder
// names can on document stores).
func (s *S3Store) CreateFolder(ctx context.Context, name, parentID string) (FolderRef, error) {
	prefix := normalizePrefix(parentID) + name + "/"

	existing, err := s.ListFoldersByName(ctx, name, parentID)
	if err != nil {
		return FolderRef{}, err
	}
	if len(existing) > 0 {
		prefix = fmt.Sprintf("%s%s-%s/", normalizePrefix(parentID), name, uuid.NewString()[:8])
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(prefix + folderMarker),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return FolderRef{}, fmt.Errorf("create folder %q: %w", prefix, err)
	}

	return FolderRef{ID: prefix, Name: name}, nil
}

// UploadResumable streams one file into parentID/name. Chunking and
// mid-transfer retry are the multipart uploader's business; a failed call
// counts as one whole-file attempt for the caller. Progress is reported as
// the fraction of size already handed to the transport.
func (s *S3Store) UploadResumable(ctx context.Context, r io.Reader, size int64, name, mimeType, parentID string, progress ProgressFunc) (UploadResult, error) {
	key := normalizePrefix(parentID) + name

	body := io.Reader(r)
	if progress != nil {
		body = &progressReader{r: r, total: size, report: progress}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return UploadResult{}, fmt.Errorf("upload %q: %w", key, err)
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat %q after upload: %w", key, err)
	}

	return UploadResult{Completed: true, RemoteSize: aws.ToInt64(head.ContentLength)}, nil
}

// normalizePrefix makes sure a folder id is either empty or ends in "/".
func normalizePrefix(id string) string {
	if id == "" {
		return ""
	}
	if !strings.HasSuffix(id, "/") {
		return id + "/"
	}
	return id
}

// progressReader reports the fraction read so far on every Read call.
// Zero-size files report 1.0 straight away.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if p.total <= 0 {
		p.report(1.0)
	} else {
		f := float64(p.read) / float64(p.total)
		if f > 1.0 {
			f = 1.0
		}
		p.report(f)
	}

	return n, err
}
