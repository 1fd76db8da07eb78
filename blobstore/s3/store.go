package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/kernelscore/blobstore"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var errAborted = errors.New("s3: upload aborted")

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

// Options configures New.
type Options struct {
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	Upload       UploadConfig
}

// WithPrefix sets the key prefix prepended to every blob name.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion overrides the region from the default AWS configuration chain.
func WithRegion(region string) func(*Options) {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint.
func WithEndpoint(endpoint string, usePathStyle bool) func(*Options) {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = usePathStyle
	}
}

// WithUploadConfig overrides the multipart upload settings.
func WithUploadConfig(cfg UploadConfig) func(*Options) {
	return func(o *Options) { o.Upload = cfg }
}

// New creates a Store using the default AWS configuration chain
// (environment, shared config files, instance metadata).
func New(ctx context.Context, bucket string, optFns ...func(*Options)) (*Store, error) {
	opts := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewStore(client, bucket, opts.Prefix, opts.Upload), nil
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "models/").
func NewStore(client Client, bucket, rootPrefix string, upload UploadConfig) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		upload:   upload,
		uploader: newUploader(client, upload),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &s3Blob{ReadCloser: resp.Body, size: aws.ToInt64(resp.ContentLength)}, nil
}

// Create starts a streaming multipart upload. The object appears when Close
// returns without error.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	uploadCtx, cancel := context.WithCancel(ctx)

	blob := &s3WritableBlob{
		pw:     pw,
		cancel: cancel,
		done:   make(chan error, 1),
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   pr,
	}
	if s.upload.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := s.uploader.Upload(uploadCtx, input)
		// Unblock writers if the upload failed early.
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if s.upload.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	_, err := s.client.PutObject(ctx, input)
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && errors.Is(mapNotFound(err), blobstore.ErrNotFound) {
		return nil
	}
	return err
}

// List returns all blob names with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		fullPrefix += "/"
	}

	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if name != "" {
				keys = append(keys, name)
			}
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func mapNotFound(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return blobstore.ErrNotFound
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return blobstore.ErrNotFound
	}
	return err
}

// s3Blob implements blobstore.Blob
type s3Blob struct {
	io.ReadCloser
	size int64
}

func (b *s3Blob) Size() int64 {
	return b.size
}

// s3WritableBlob implements blobstore.WritableBlob
type s3WritableBlob struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
	err    error
}

func (b *s3WritableBlob) Write(p []byte) (int, error) {
	return b.pw.Write(p)
}

func (b *s3WritableBlob) Close() error {
	b.once.Do(func() {
		_ = b.pw.Close()
		b.err = <-b.done
		b.cancel()
	})
	return b.err
}

// Abort fails the upload; the uploader aborts any multipart upload it started.
func (b *s3WritableBlob) Abort() error {
	b.once.Do(func() {
		_ = b.pw.CloseWithError(errAborted)
		<-b.done
		b.cancel()
	})
	return nil
}
