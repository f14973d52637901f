// Package artifact locates the artifact directory the service loads from. A
// local path is used as is; an s3://bucket/prefix location is downloaded into
// a local cache first.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/sethvargo/go-retry"
	"github.com/viant/vecserve/store"
	"golang.org/x/sync/errgroup"
)

const scheme = "s3://"

// Resolver turns an artifact location into a local directory.
type Resolver struct {
	client     ObjectGetter
	cacheDir   string
	maxRetries uint64
	backoff    time.Duration
	logger     *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRetry sets the number of retries and the initial Fibonacci backoff.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(r *Resolver) {
		r.maxRetries = maxRetries
		r.backoff = initial
	}
}

// WithLogger sets the logger used for download progress.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver. client may be nil when only local
// locations are used.
func NewResolver(client ObjectGetter, cacheDir string, opts ...Option) *Resolver {
	r := &Resolver{
		client:     client,
		cacheDir:   cacheDir,
		maxRetries: 5,
		backoff:    time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.backoff <= 0 {
		r.backoff = time.Millisecond
	}
	if r.cacheDir == "" {
		r.cacheDir = filepath.Join(os.TempDir(), "vecserve")
	}
	return r
}

// IsRemote reports whether location names an S3 object prefix.
func IsRemote(location string) bool { return strings.HasPrefix(location, scheme) }

// Resolve returns a local directory holding the artifact. For s3 locations
// the index and document table are required; extra files are fetched when
// present.
func (r *Resolver) Resolve(ctx context.Context, location string, extra ...string) (string, error) {
	if !IsRemote(location) {
		return location, nil
	}
	if r.client == nil {
		return "", fmt.Errorf("artifact: no S3 client configured for %s", location)
	}
	bucket, prefix, err := parseLocation(location)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(r.cacheDir, bucket, filepath.FromSlash(prefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []string{store.IndexFile, store.DocumentsFile} {
		g.Go(func() error {
			return r.download(gctx, bucket, path.Join(prefix, name), filepath.Join(dir, name))
		})
	}
	for _, name := range extra {
		g.Go(func() error {
			err := r.download(gctx, bucket, path.Join(prefix, name), filepath.Join(dir, name))
			if errors.Is(err, store.ErrMissingArtifact) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return dir, nil
}

func parseLocation(location string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(location, scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("artifact: missing bucket in %q", location)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (r *Resolver) download(ctx context.Context, bucket, key, dest string) error {
	started := time.Now()
	b := retry.WithMaxRetries(r.maxRetries, retry.NewFibonacci(r.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := r.fetch(ctx, bucket, key, dest)
		if isMissing(err) {
			return fmt.Errorf("%w: s3://%s/%s: %v", store.ErrMissingArtifact, bucket, key, err)
		}
		if err != nil {
			r.logger.Warn("artifact download failed, retrying", "bucket", bucket, "key", key, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("artifact downloaded", "bucket", bucket, "key", key, "elapsed", time.Since(started))
	return nil
}

// isMissing reports whether err means the object cannot be read at all.
// Without s3:ListBucket a missing key is reported as 403 instead of 404.
func isMissing(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound, http.StatusForbidden:
			return true
		}
	}
	return false
}

func (r *Resolver) fetch(ctx context.Context, bucket, key, dest string) error {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer func() { _ = out.Body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, out.Body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
