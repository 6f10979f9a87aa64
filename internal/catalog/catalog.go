package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gavel/internal/blobstore"
	"gavel/internal/hearing"
	"gavel/internal/transcript"
)

const (
	metadataObject   = "metadata.json"
	transcriptObject = "transcript.json"
)

// ErrNotFound reports that a hearing has no complete artifact pair.
var ErrNotFound = errors.New("transcript not found")

// Hearing bundles the two artifacts stored for a completed transcription.
type Hearing struct {
	Metadata   hearing.Metadata  `json:"metadata"`
	Transcript transcript.Record `json:"transcript"`
}

// Catalog is the artifact store for finished hearings. All objects live
// under an optional key prefix so several deployments can share a bucket.
type Catalog struct {
	store  blobstore.Store
	prefix string
}

func New(store blobstore.Store, prefix string) *Catalog {
	prefix = strings.Trim(prefix, "/")
	return &Catalog{store: store, prefix: prefix}
}

// ValidFolderPath rejects traversal attempts before a path reaches storage.
func ValidFolderPath(folderPath string) bool {
	if folderPath == "" {
		return false
	}
	return !strings.Contains(folderPath, "..")
}

func (c *Catalog) key(folderPath, name string) string {
	folderPath = strings.Trim(folderPath, "/")
	if c.prefix == "" {
		return folderPath + "/" + name
	}
	return c.prefix + "/" + folderPath + "/" + name
}

// IsCached reports whether both artifacts exist at the folder path. A
// partial pair counts as a miss so interrupted runs are redone in full.
func (c *Catalog) IsCached(ctx context.Context, folderPath string) (bool, error) {
	metaOK, err := c.store.Exists(ctx, c.key(folderPath, metadataObject))
	if err != nil {
		return false, fmt.Errorf("check metadata: %w", err)
	}
	if !metaOK {
		return false, nil
	}
	transcriptOK, err := c.store.Exists(ctx, c.key(folderPath, transcriptObject))
	if err != nil {
		return false, fmt.Errorf("check transcript: %w", err)
	}
	return transcriptOK, nil
}

// Load returns both artifacts for the folder path, or ErrNotFound when
// either one is missing.
func (c *Catalog) Load(ctx context.Context, folderPath string) (*Hearing, error) {
	metaData, err := c.store.Get(ctx, c.key(folderPath, metadataObject))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	transcriptData, err := c.store.Get(ctx, c.key(folderPath, transcriptObject))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	var result Hearing
	if err := json.Unmarshal(metaData, &result.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := json.Unmarshal(transcriptData, &result.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &result, nil
}

// Save writes both artifacts, overwriting any previous pair. The metadata
// object is written last so a complete pair implies a finished run.
func (c *Catalog) Save(ctx context.Context, folderPath string, meta hearing.Metadata, record transcript.Record) error {
	transcriptData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := c.store.Put(ctx, c.key(folderPath, transcriptObject), transcriptData); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := c.store.Put(ctx, c.key(folderPath, metadataObject), metaData); err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}
	return nil
}

// List returns the metadata of every stored hearing, newest date first.
// Folders holding several metadata objects under nested paths are deduped
// on the folder containing the object.
func (c *Catalog) List(ctx context.Context) ([]hearing.Metadata, error) {
	listPrefix := ""
	if c.prefix != "" {
		listPrefix = c.prefix + "/"
	}
	keys, err := c.store.List(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	seen := make(map[string]bool)
	var entries []hearing.Metadata
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+metadataObject) {
			continue
		}
		folder := strings.TrimSuffix(key, "/"+metadataObject)
		if seen[folder] {
			continue
		}
		seen[folder] = true

		data, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		var meta hearing.Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		entries = append(entries, meta)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	return entries, nil
}
