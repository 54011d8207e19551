package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Adapter loads raw dictionary documents keyed by locale.
type Adapter interface {
	Load(ctx context.Context) (map[string]map[string]any, error)
}

// MapAdapter serves dictionaries from memory.
type MapAdapter struct {
	Data map[string]map[string]any
}

func (a *MapAdapter) Load(_ context.Context) (map[string]map[string]any, error) {
	if a.Data == nil {
		return make(map[string]map[string]any), nil
	}
	return a.Data, nil
}

// FileAdapter reads a single dictionary file.
type FileAdapter struct {
	parser Parser
	path   string
}

// NewFileAdapter returns nil if parser is nil or path is empty.
func NewFileAdapter(parser Parser, path string) *FileAdapter {
	if parser == nil || path == "" {
		return nil
	}
	return &FileAdapter{parser: parser, path: path}
}

func (a *FileAdapter) Load(ctx context.Context) (map[string]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrLoadingFileCancelled, err)
	}

	content, err := os.ReadFile(a.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: dictionary file '%s' is empty", ErrFailedToParseFile, a.path)
	}

	docs, err := a.parser.Parse(ctx, content)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseFile, err)
	}
	return docs, nil
}

// DirectoryAdapter reads every supported file of a directory (non-recursive)
// and deep-merges them. Files are processed in lexical order, so later files
// override earlier ones leaf by leaf.
type DirectoryAdapter struct {
	parser Parser
	path   string
}

// NewDirectoryAdapter returns nil if parser is nil or path is empty.
func NewDirectoryAdapter(parser Parser, path string) *DirectoryAdapter {
	if parser == nil || path == "" {
		return nil
	}
	return &DirectoryAdapter{parser: parser, path: path}
}

// Path returns the watched directory.
func (a *DirectoryAdapter) Path() string {
	return a.path
}

func (a *DirectoryAdapter) Load(ctx context.Context) (map[string]map[string]any, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToAccessDirectory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: path '%s' is not a directory", ErrFailedToAccessDirectory, a.path)
	}

	return loadTree(ctx, os.DirFS(a.path), ".", a.parser)
}

// FSAdapter reads dictionaries from a directory of an fs.FS, typically an
// embed.FS shipped with the binary.
type FSAdapter struct {
	parser Parser
	fsys   fs.FS
	dir    string
}

// NewFSAdapter returns nil if parser or fsys is nil, or dir is empty.
func NewFSAdapter(parser Parser, fsys fs.FS, dir string) *FSAdapter {
	if parser == nil || fsys == nil || dir == "" {
		return nil
	}
	return &FSAdapter{parser: parser, fsys: fsys, dir: dir}
}

func (a *FSAdapter) Load(ctx context.Context) (map[string]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrLoadingDictionariesCancelled, err)
	}
	return loadTree(ctx, a.fsys, a.dir, a.parser)
}

func loadTree(ctx context.Context, fsys fs.FS, dir string, parser Parser) (map[string]map[string]any, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadDirectory, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !parser.SupportsFileExtension(filepath.Ext(entry.Name())) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no dictionary files found in '%s'", ErrFailedToReadDirectory, dir)
	}

	result := make(map[string]map[string]any)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(ErrContextCancelledDuringProcessing, err)
		}

		filePath := path.Join(dir, name)
		content, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, err)
		}

		docs, err := parser.Parse(ctx, content)
		if err != nil {
			return nil, errors.Join(ErrFailedToParseFile, fmt.Errorf("file '%s': %w", filePath, err))
		}

		for locale, doc := range docs {
			if result[locale] == nil {
				result[locale] = make(map[string]any)
			}
			mergeDocument(result[locale], doc)
		}
	}

	return result, nil
}

// mergeDocument deep-merges src into dst, last write wins per leaf.
func mergeDocument(dst, src map[string]any) {
	for key, val := range src {
		srcMap, ok := val.(map[string]any)
		if !ok {
			dst[key] = val
			continue
		}
		dstMap, ok := dst[key].(map[string]any)
		if !ok {
			dstMap = make(map[string]any, len(srcMap))
			dst[key] = dstMap
		}
		mergeDocument(dstMap, srcMap)
	}
}

// RedisHashReader is the subset of the go-redis client used by RedisAdapter.
type RedisHashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisAdapter reads dictionaries stored in a Redis hash: every hash field is
// a locale and its value a JSON document in the Fragment shape. This lets a
// fleet of services share dictionaries edited at runtime.
type RedisAdapter struct {
	client RedisHashReader
	key    string
}

// NewRedisAdapter returns nil if client is nil or key is empty.
func NewRedisAdapter(client RedisHashReader, key string) *RedisAdapter {
	if client == nil || key == "" {
		return nil
	}
	return &RedisAdapter{client: client, key: key}
}

func (a *RedisAdapter) Load(ctx context.Context) (map[string]map[string]any, error) {
	fields, err := a.client.HGetAll(ctx, a.key).Result()
	if err != nil {
		return nil, errors.Join(ErrFailedToReadRedis, err)
	}

	result := make(map[string]map[string]any, len(fields))
	for locale, raw := range fields {
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, errors.Join(ErrFailedToParseJSON, fmt.Errorf("locale %q: %w", locale, err))
		}
		result[locale] = doc
	}
	return result, nil
}
