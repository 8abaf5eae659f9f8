package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/assembler"
	"github.com/amrrdev/officetext/internal/cache"
	"github.com/amrrdev/officetext/internal/parser"
	"github.com/amrrdev/officetext/internal/router"
	"github.com/amrrdev/officetext/internal/types"
)

const textContentType = "text/plain; charset=utf-8"

// ObjectStore is the subset of the object store the pipeline touches.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Download(ctx context.Context, key, localPath string) error
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Extractors hands out the extractor for a capability.
type Extractors interface {
	Get(capability types.Capability) (parser.Extractor, error)
}

// StatusTracker observes invocations. Implementations must not block for
// long and must swallow their own errors.
type StatusTracker interface {
	Processing(ctx context.Context, ref types.DocumentRef)
	Done(ctx context.Context, ref types.DocumentRef, fileKey string, cached bool)
	Failed(ctx context.Context, ref types.DocumentRef, err error)
}

type Config struct {
	PrefixProcessed string
	// ScratchDir is the parent of per-invocation work directories. Empty means os.TempDir().
	ScratchDir string
}

type Pipeline struct {
	cfg        Config
	store      ObjectStore
	resolver   *cache.Resolver
	router     *router.Router
	extractors Extractors
	tracker    StatusTracker
	logger     *logrus.Entry
}

func New(cfg Config, store ObjectStore, rt *router.Router, extractors Extractors, logger *logrus.Entry) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		resolver:   cache.NewResolver(store, cfg.PrefixProcessed),
		router:     rt,
		extractors: extractors,
		tracker:    noopTracker{},
		logger:     logger,
	}
}

// SetTracker installs t; nil restores the no-op tracker.
func (p *Pipeline) SetTracker(t StatusTracker) {
	if t == nil {
		t = noopTracker{}
	}
	p.tracker = t
}

// CacheKey is the artifact key fileName resolves to.
func (p *Pipeline) CacheKey(fileName string) string {
	return p.resolver.Key(types.DocumentRef(fileName))
}

// Process runs one invocation: an existing artifact is returned untouched,
// otherwise the source is downloaded, extracted, assembled and written.
// Nothing is persisted unless every earlier step succeeded.
func (p *Pipeline) Process(ctx context.Context, fileName string) (*types.Result, error) {
	ref := types.DocumentRef(fileName)
	if err := ref.Validate(); err != nil {
		return nil, &Error{FileName: fileName, State: StateValidate, Kind: ErrMalformedInput, Err: err}
	}

	log := p.logger.WithField("file_name", fileName)

	exists, key, err := p.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, p.fail(ctx, ref, StateCheckCache, ErrStoreUnavailable, err)
	}
	if exists {
		log.WithField("file_key", key).Info("cache hit")
		p.tracker.Done(ctx, ref, key, true)
		return &types.Result{FileKey: key, OriginalFileName: fileName, Cached: true}, nil
	}

	p.tracker.Processing(ctx, ref)

	text, err := p.extract(ctx, ref, log)
	if err != nil {
		p.tracker.Failed(ctx, ref, err)
		return nil, err
	}

	if err := p.store.Put(ctx, key, []byte(text), textContentType); err != nil {
		return nil, p.fail(ctx, ref, StatePersist, ErrStoreUnavailable, err)
	}

	log.WithFields(logrus.Fields{"file_key": key, "bytes": len(text)}).Info("processed text stored")
	p.tracker.Done(ctx, ref, key, false)

	return &types.Result{FileKey: key, OriginalFileName: fileName}, nil
}

// extract covers Download → Route → Extract → Assemble inside a scratch
// directory that is removed before returning.
func (p *Pipeline) extract(ctx context.Context, ref types.DocumentRef, log *logrus.Entry) (string, error) {
	dir, err := os.MkdirTemp(p.cfg.ScratchDir, "officetext-*")
	if err != nil {
		return "", p.wrap(ref, StateDownload, ErrStoreUnavailable, fmt.Errorf("failed to create scratch dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).Warn("failed to remove scratch dir")
		}
	}()

	// The local name never comes from the reference beyond its extension.
	local := filepath.Join(dir, "source"+ref.Extension())
	if err := p.store.Download(ctx, string(ref), local); err != nil {
		return "", p.wrap(ref, StateDownload, ErrStoreUnavailable, err)
	}

	capability, err := p.router.Route(ref.Extension())
	if err != nil {
		return "", p.wrap(ref, StateRoute, ErrUnsupportedFormat, err)
	}

	extractor, err := p.extractors.Get(capability)
	if err != nil {
		return "", p.wrap(ref, StateRoute, ErrUnsupportedFormat, err)
	}

	fragments, err := extractor.Extract(ctx, local)
	if err != nil {
		return "", p.wrap(ref, StateExtract, ErrExtractionFailure, err)
	}

	log.WithFields(logrus.Fields{
		"capability": capability.String(),
		"fragments":  len(fragments),
	}).Debug("extracted")

	return assembler.Assemble(fragments), nil
}

func (p *Pipeline) wrap(ref types.DocumentRef, state State, kind, err error) *Error {
	return &Error{FileName: string(ref), State: state, Kind: kind, Err: err}
}

func (p *Pipeline) fail(ctx context.Context, ref types.DocumentRef, state State, kind, err error) error {
	wrapped := p.wrap(ref, state, kind, err)
	p.tracker.Failed(ctx, ref, wrapped)
	return wrapped
}

type noopTracker struct{}

func (noopTracker) Processing(context.Context, types.DocumentRef) {}
func (noopTracker) Done(context.Context, types.DocumentRef, string, bool) {}
func (noopTracker) Failed(context.Context, types.DocumentRef, error) {}
