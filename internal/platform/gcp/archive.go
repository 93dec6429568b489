package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// PayloadKind names the import flow an archived payload came from.
type PayloadKind string

const (
	PayloadKindBaseline PayloadKind = "baseline"
	PayloadKindOffer    PayloadKind = "offer"
)

// PayloadArchive stores raw import payloads for audit. Archiving is best
// effort: callers log a failure and carry on.
type PayloadArchive interface {
	Archive(ctx context.Context, kind PayloadKind, projectID uuid.UUID, body []byte) (string, error)
	Enabled() bool
	Close() error
}

type noopArchive struct{}

// NewNoopArchive returns an archive that drops every payload.
func NewNoopArchive() PayloadArchive { return noopArchive{} }

func (noopArchive) Archive(context.Context, PayloadKind, uuid.UUID, []byte) (string, error) {
	return "", nil
}
func (noopArchive) Enabled() bool { return false }
func (noopArchive) Close() error  { return nil }

type gcsArchive struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewPayloadArchive returns a GCS backed archive, or a no-op one when cfg
// has no bucket.
func NewPayloadArchive(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (PayloadArchive, error) {
	if !cfg.Enabled() {
		return NewNoopArchive(), nil
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	archiveLog := log.With("service", "PayloadArchive")
	archiveLog.Info(
		"Import archive initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"bucket", cfg.Bucket,
		"prefix", cfg.Prefix,
	)
	return &gcsArchive{
		log:    archiveLog,
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(cfg.Mode),
		}
	}
}

func (a *gcsArchive) Enabled() bool { return true }

func (a *gcsArchive) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *gcsArchive) Archive(ctx context.Context, kind PayloadKind, projectID uuid.UUID, body []byte) (string, error) {
	key := ObjectKey(a.prefix, kind, projectID, a.now(), uuid.New())
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{
		"project_id": projectID.String(),
		"kind":       string(kind),
	}
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write payload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	a.log.Debug("Payload archived", "key", key, "bytes", len(body))
	return key, nil
}

// ObjectKey lays archived payloads out as
// [prefix/]kind/project/YYYY/MM/DD/<unix-nanos>-<id>.json.
func ObjectKey(prefix string, kind PayloadKind, projectID uuid.UUID, at time.Time, id uuid.UUID) string {
	at = at.UTC()
	name := fmt.Sprintf("%d-%s.json", at.UnixNano(), id)
	return path.Join(
		strings.Trim(prefix, "/"),
		string(kind),
		projectID.String(),
		at.Format("2006/01/02"),
		name,
	)
}
