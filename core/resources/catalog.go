// Package resources is a catalog for dictionary and text bundles. It
// resolves named requests through an injected Fetcher, unpacks .xz and .zip
// bundles, stores the results content-addressed by BLAKE3 key, and keeps
// recently resolved entries in an LRU cache. No network code lives here;
// callers supply the Fetcher.
package resources

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/openscriptures/sfmkit/core/cache"
	"github.com/openscriptures/sfmkit/core/errors"
	"github.com/openscriptures/sfmkit/internal/logging"
)

// Fetcher retrieves the raw bytes behind a source locator.
type Fetcher func(ctx context.Context, source string) ([]byte, error)

// Request names one resource to resolve.
type Request struct {
	// Name is the logical resource name, used for the on-disk filename.
	Name string

	// Source is the locator handed to the Fetcher. Sources ending in .xz
	// or .zip are unpacked after fetching.
	Source string

	// Member selects a file inside a .zip source. Empty means the archive
	// must contain exactly one file.
	Member string
}

// Resource is a resolved, locally materialized resource.
type Resource struct {
	Name string
	Path string // local file path
	Key  string // BLAKE3 content key of the materialized bytes
	Size int64
}

// Config configures a Catalog.
type Config struct {
	// WorkDir receives extracted files. Empty means os.TempDir().
	WorkDir string

	// CacheSize bounds the resolved-entry cache. 0 uses a default.
	CacheSize int
}

// Catalog resolves resource requests.
type Catalog struct {
	fetch   Fetcher
	workDir string
	cache   cache.Cache[string, *Resource]
}

// NewCatalog builds a catalog around the given fetcher.
func NewCatalog(fetch Fetcher, cfg Config) *Catalog {
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	cacheCfg := cache.DefaultConfig[string, *Resource]()
	if cfg.CacheSize > 0 {
		cacheCfg.MaxSize = cfg.CacheSize
	}
	return &Catalog{
		fetch:   fetch,
		workDir: workDir,
		cache:   cache.New(cacheCfg),
	}
}

// FileFetcher returns a Fetcher that reads sources as paths under root.
// Sources resolving outside root are rejected.
func FileFetcher(root string) Fetcher {
	return func(_ context.Context, source string) ([]byte, error) {
		path := filepath.Join(root, source)
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, errors.Wrap(errors.ErrInvalidInput, "source escapes fetch root: "+source)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewNotFound("resource", source)
			}
			return nil, errors.NewIO("read", path, err)
		}
		return data, nil
	}
}

// Resolve materializes the requested resource, reusing the cache and the
// content-addressed store when possible.
func (c *Catalog) Resolve(ctx context.Context, req Request) (*Resource, error) {
	if req.Source == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "resource request has no source")
	}

	cacheKey := req.Source + "|" + req.Member
	if res, ok := c.cache.Get(cacheKey); ok {
		if _, err := os.Stat(res.Path); err == nil {
			logging.Debug("resource cache hit", "source", req.Source, "key", res.Key)
			return res, nil
		}
		// Materialized file vanished underneath us; fall through to refetch.
		c.cache.Remove(cacheKey)
	}

	raw, err := c.fetch(ctx, req.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", req.Source)
	}

	data, err := unpack(req, raw)
	if err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	key := hex.EncodeToString(sum[:])

	path, err := c.materialize(req.Name, key, data)
	if err != nil {
		return nil, err
	}

	res := &Resource{Name: req.Name, Path: path, Key: key, Size: int64(len(data))}
	c.cache.Put(cacheKey, res)
	logging.Info("resource resolved", "source", req.Source, "key", key, "size", res.Size)
	return res, nil
}

// Stats exposes the resolved-entry cache counters.
func (c *Catalog) Stats() cache.Stats {
	return c.cache.Stats()
}

// unpack decompresses or extracts raw per the source suffix.
func unpack(req Request, raw []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(req.Source, ".xz"):
		r, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &errors.ParseError{Format: "xz", Path: req.Source, Message: "corrupt xz stream", Err: err}
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, &errors.ParseError{Format: "xz", Path: req.Source, Message: "truncated xz stream", Err: err}
		}
		return data, nil
	case strings.HasSuffix(req.Source, ".zip"):
		return extractZipMember(req, raw)
	default:
		return raw, nil
	}
}

func extractZipMember(req Request, raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &errors.ParseError{Format: "zip", Path: req.Source, Message: "corrupt zip archive", Err: err}
	}

	var target *zip.File
	if req.Member == "" {
		var files []*zip.File
		for _, f := range zr.File {
			if !f.FileInfo().IsDir() {
				files = append(files, f)
			}
		}
		if len(files) != 1 {
			return nil, errors.Wrapf(errors.ErrInvalidInput,
				"zip archive %s has %d files; a member name is required", req.Source, len(files))
		}
		target = files[0]
	} else {
		for _, f := range zr.File {
			if f.Name == req.Member {
				target = f
				break
			}
		}
		if target == nil {
			return nil, errors.NewNotFound("zip member", req.Member)
		}
	}

	rc, err := target.Open()
	if err != nil {
		return nil, errors.NewIO("open", target.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.NewIO("read", target.Name, err)
	}
	return data, nil
}

// materialize writes data under a content-keyed path, reusing an existing
// file for the same key. Writes go through a uuid-named temp file so a
// crashed write never leaves a half-written file at the final path.
func (c *Catalog) materialize(name, key string, data []byte) (string, error) {
	if name == "" {
		name = "resource"
	}
	dir := filepath.Join(c.workDir, key[:2], key)
	final := filepath.Join(dir, name)

	if info, err := os.Stat(final); err == nil && info.Size() == int64(len(data)) {
		logging.Debug("reusing materialized resource", "path", final)
		return final, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.NewIO("mkdir", dir, err)
	}
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.NewIO("write", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", errors.NewIO("rename", final, err)
	}
	return final, nil
}
