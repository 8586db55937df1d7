package shop

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	awsx "github.com/shoplift/checkout-service/internal/aws"
)

// ArchiveNames holds the object keys of the three zipped database files.
type ArchiveNames struct {
	Inventory     string
	ShippingRules string
	Settings      string
}

// Loader fetches the shop database from S3. Each archive is a zip whose
// first entry is a JSON document. The database is loaded fresh per request
// and never cached; the loader itself is stateless and safe for concurrent
// use.
type Loader struct {
	client   awsx.S3API
	bucket   string
	archives ArchiveNames
	logger   *zap.Logger
}

// NewLoader returns a Loader bound to a bucket and its archive keys.
func NewLoader(client awsx.S3API, bucket string, archives ArchiveNames, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		client:   client,
		bucket:   bucket,
		archives: archives,
		logger:   logger,
	}
}

// Load fetches and decodes the three archives in parallel.
func (l *Loader) Load(ctx context.Context) (*Database, error) {
	l.logger.Info("loading shop database",
		zap.String("bucket", l.bucket),
		zap.String("inventory", l.archives.Inventory),
		zap.String("shipping_rules", l.archives.ShippingRules),
		zap.String("settings", l.archives.Settings),
	)

	var db Database
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetchJSON(ctx, l.archives.Inventory, &db.Catalog) })
	g.Go(func() error { return l.fetchJSON(ctx, l.archives.ShippingRules, &db.ShippingRules) })
	g.Go(func() error { return l.fetchJSON(ctx, l.archives.Settings, &db.Settings) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &db, nil
}

// fetchJSON downloads one archive, unzips its first entry and decodes the
// JSON payload into out.
func (l *Loader) fetchJSON(ctx context.Context, key string, out interface{}) error {
	obj, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &l.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("open archive %s: %w", key, err)
	}
	if len(zr.File) == 0 {
		return fmt.Errorf("archive %s is empty", key)
	}

	entry := zr.File[0]
	l.logger.Debug("decoding archive entry",
		zap.String("archive", key),
		zap.String("entry", entry.Name),
	)
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry %s in %s: %w", entry.Name, key, err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(out); err != nil {
		return fmt.Errorf("decode entry %s in %s: %w", entry.Name, key, err)
	}
	return nil
}
