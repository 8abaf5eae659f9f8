package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amrrdev/officetext/internal/pipeline"
	"github.com/amrrdev/officetext/internal/status"
	"github.com/amrrdev/officetext/internal/storage"
	"github.com/amrrdev/officetext/internal/types"
)

const (
	urlExpiryDuration = 15 * time.Minute
)

var (
	ErrNotProcessed  = errors.New("document has not been processed")
	ErrQueueDisabled = errors.New("extraction queue is not configured")
)

type Extractor interface {
	Process(ctx context.Context, fileName string) (*types.Result, error)
	CacheKey(fileName string) string
}

type FileStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	GetDownloadUrl(ctx context.Context, key string, duration time.Duration) (string, error)
	ListFiles(ctx context.Context, prefix string) ([]storage.FileInfo, error)
}

type StatusReader interface {
	Get(ctx context.Context, fileName string) (*status.Status, error)
}

type JobPublisher interface {
	PublishExtraction(ctx context.Context, fileName, requestedBy string) (string, error)
}

type Document struct {
	extractor Extractor
	store     FileStore
	statuses  StatusReader
	jobs      JobPublisher
	prefixes  Prefixes
}

// Prefixes are the object store namespaces for sources and artifacts.
type Prefixes struct {
	Originals string
	Processed string
}

type GetUrlResponse struct {
	FileKey      string `json:"file_key"`
	PresignedUrl string `json:"pre-signed_url"`
	ValidFor     string `json:"valid_for"`
}

type ListFilesResponse struct {
	Files []storage.FileInfo `json:"files"`
}

type EnqueueResponse struct {
	JobID    string `json:"job_id"`
	FileName string `json:"file_name"`
}

// NewDocument wires the document operations. statuses and jobs may be nil
// when status tracking or the queue is not configured.
func NewDocument(extractor Extractor, store FileStore, statuses StatusReader, jobs JobPublisher, prefixes Prefixes) *Document {
	return &Document{
		extractor: extractor,
		store:     store,
		statuses:  statuses,
		jobs:      jobs,
		prefixes:  prefixes,
	}
}

func (d *Document) Extract(ctx context.Context, fileName string) (*types.Result, error) {
	return d.extractor.Process(ctx, fileName)
}

func (d *Document) Status(ctx context.Context, fileName string) (*status.Status, error) {
	if d.statuses == nil {
		return nil, status.ErrDisabled
	}
	return d.statuses.Get(ctx, fileName)
}

func (d *Document) ListProcessed(ctx context.Context) (*ListFilesResponse, error) {
	return d.listFiles(ctx, d.prefixes.Processed)
}

func (d *Document) ListOriginals(ctx context.Context) (*ListFilesResponse, error) {
	return d.listFiles(ctx, d.prefixes.Originals)
}

func (d *Document) listFiles(ctx context.Context, prefix string) (*ListFilesResponse, error) {
	files, err := d.store.ListFiles(ctx, strings.TrimSuffix(prefix, "/")+"/")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list files: %v", pipeline.ErrStoreUnavailable, err)
	}

	if files == nil {
		files = []storage.FileInfo{}
	}
	return &ListFilesResponse{
		Files: files,
	}, nil
}

// GetDownloadUrl presigns the processed text of fileName, which must
// already exist.
func (d *Document) GetDownloadUrl(ctx context.Context, fileName string) (*GetUrlResponse, error) {
	if err := types.DocumentRef(fileName).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrMalformedInput, err)
	}

	key := d.extractor.CacheKey(fileName)

	exists, err := d.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrStoreUnavailable, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotProcessed, key)
	}

	presignedUrl, err := d.store.GetDownloadUrl(ctx, key, urlExpiryDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate download URL: %v", pipeline.ErrStoreUnavailable, err)
	}

	return &GetUrlResponse{
		FileKey:      key,
		PresignedUrl: presignedUrl,
		ValidFor:     fmt.Sprintf("%.0f minutes", urlExpiryDuration.Minutes()),
	}, nil
}

func (d *Document) Enqueue(ctx context.Context, fileName, requestedBy string) (*EnqueueResponse, error) {
	if err := types.DocumentRef(fileName).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrMalformedInput, err)
	}
	if d.jobs == nil {
		return nil, ErrQueueDisabled
	}

	jobID, err := d.jobs.PublishExtraction(ctx, fileName, requestedBy)
	if err != nil {
		return nil, err
	}

	return &EnqueueResponse{
		JobID:    jobID,
		FileName: fileName,
	}, nil
}
