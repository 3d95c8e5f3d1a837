// Package extract orchestrates one bulk-extraction run: build the full
// table query, unload it to a freshly allocated staging path, download
// the staged files into scoped local scratch space, stream decoded
// records to the consumer, and unconditionally clean the staged files
// up afterwards.
package extract

import (
	"context"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/lakebound/redshift-extract/internal/decode"
	"github.com/lakebound/redshift-extract/internal/errors"
	"github.com/lakebound/redshift-extract/internal/query"
	"github.com/lakebound/redshift-extract/internal/staging"
	"github.com/lakebound/redshift-extract/internal/storage"
	"github.com/lakebound/redshift-extract/internal/unload"
	"github.com/lakebound/redshift-extract/pkg/types"
)

// Request is the only state threaded through one pipeline run. It is
// created at the start of an extraction and discarded at the end;
// nothing persists across runs.
type Request struct {
	// Table is the fully qualified table identifier.
	Table string

	// Schema is the discovered column schema; immutable during the run.
	Schema types.Schema

	// Bucket and Prefix locate the staging area in the object store.
	Bucket string
	Prefix string
}

// Pipeline runs extractions. Safe for use across runs: the only shared
// state is the object-store client, which is stateless beyond
// connection pooling.
type Pipeline struct {
	// Store is the object-store client. When nil, an S3 store is
	// constructed lazily from S3Config on first use and reused.
	Store storage.ObjectStore

	// S3Config configures the lazily constructed S3 store.
	S3Config storage.S3Config

	// Unloader issues the warehouse export command.
	Unloader *unload.Executor

	// Options are the unload options for this pipeline; nil selects
	// the delimited defaults, unload.ParquetOptions() selects columnar
	// output.
	Options map[string]any

	storeOnce sync.Once
	lazyStore storage.ObjectStore
	storeErr  error
}

// Run performs one full-table extraction, invoking yield once per
// decoded record. Decoding is a lazy pull: records materialize only as
// yield consumes them, and a yield error stops the run. The staged
// remote files are cleaned up on every exit path before Run returns.
func (p *Pipeline) Run(ctx context.Context, req Request, yield func(types.Record) error) error {
	store, err := p.store(ctx)
	if err != nil {
		return err
	}

	q := query.Build(req.Schema, req.Table)
	sp := staging.Allocate(req.Bucket, req.Prefix, req.Table)

	// Cleanup owns every object under the run's private prefix and
	// nothing else; it runs whether the stages below complete, yield
	// zero files, or fail.
	defer p.cleanup(ctx, store, sp)

	if _, err := p.Unloader.Unload(ctx, q, sp.String(), p.Options); err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "redshift-extract-")
	if err != nil {
		return errors.NewInternalError("failed to create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	files, err := p.Download(ctx, sp.String(), scratch)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := decodeFile(file, req.Schema, yield); err != nil {
			return err
		}
	}
	return nil
}

// Download lists the staged objects under a staging path and copies
// each to localDir, flattening any nested prefix structure down to the
// base filename. An empty listing returns an empty slice: an empty
// unload result is a valid terminal state, not a failure.
func (p *Pipeline) Download(ctx context.Context, stagingPath, localDir string) ([]string, error) {
	sp, err := staging.Parse(stagingPath)
	if err != nil {
		return nil, err
	}

	store, err := p.store(ctx)
	if err != nil {
		return nil, err
	}

	keys, err := store.ListObjects(ctx, sp.Bucket, sp.Prefix)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeListFailed,
			"failed to list staged objects under "+stagingPath, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, errors.NewStorageError(errors.CodeDownloadFailed,
			"failed to create local directory "+localDir, err)
	}

	// Downloads are issued file by file so a failure names exactly one
	// object.
	local := make([]string, 0, len(keys))
	for _, key := range keys {
		dst := filepath.Join(localDir, path.Base(key))
		if err := store.Download(ctx, sp.Bucket, key, dst); err != nil {
			return nil, errors.NewStorageError(errors.CodeDownloadFailed,
				"failed to download "+key, err)
		}
		local = append(local, dst)
	}
	return local, nil
}

// cleanup deletes every object under the run's staging prefix. It is
// best-effort: any failure is logged as a warning and never surfaces,
// so a cleanup failure can neither mask an extraction result nor abort
// the caller.
func (p *Pipeline) cleanup(ctx context.Context, store storage.ObjectStore, sp staging.Path) {
	// The run may be failing with a canceled context; cleanup still runs.
	ctx = context.WithoutCancel(ctx)

	keys, err := store.ListObjects(ctx, sp.Bucket, sp.Prefix)
	if err != nil {
		log.Printf("[WARN] extract: failed to list staged files for cleanup under %s: %v", sp.String(), err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := store.DeleteObjects(ctx, sp.Bucket, keys); err != nil {
		log.Printf("[WARN] extract: failed to clean up %d staged files under %s: %v", len(keys), sp.String(), err)
	}
}

// decodeFile streams one downloaded file's records to yield.
func decodeFile(file string, schema types.Schema, yield func(types.Record) error) error {
	reader, err := decode.Open(file, schema)
	if err != nil {
		return errors.Wrap(errors.ErrCategoryDecode, errors.CodeUnreadableFile,
			"failed to open "+file, err)
	}
	defer reader.Close()

	for {
		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCategoryDecode, errors.CodeUnreadableFile,
				"failed to decode "+file, err)
		}
		if err := yield(record); err != nil {
			return err
		}
	}
}

// store returns the configured object store, constructing the shared S3
// client on first use.
func (p *Pipeline) store(ctx context.Context) (storage.ObjectStore, error) {
	if p.Store != nil {
		return p.Store, nil
	}
	p.storeOnce.Do(func() {
		s3store, err := storage.NewS3Store(ctx, p.S3Config)
		if err != nil {
			p.storeErr = errors.NewConnectionError(errors.CodeConnectFailed,
				"failed to construct S3 client", err)
			return
		}
		p.lazyStore = s3store
	})
	return p.lazyStore, p.storeErr
}
