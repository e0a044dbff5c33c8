package json

import (
	"path/filepath"

	"github.com/drakos74/free-descent/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage keeps one json file per key under path/table/shard.
type BlobStorage struct {
	path  string
	table string
	shard string
	debug bool
}

// BlobShard creates blob storages for the given table under the default directory.
func BlobShard(table string) storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		return NewJsonBlob(storage.DefaultDir, table, shard, false), nil
	}
}

// table has the same schema
// shard is a logical split
func NewJsonBlob(path, table, shard string, debug bool) *BlobStorage {
	return &BlobStorage{
		path:  path,
		table: table,
		shard: shard,
		debug: debug,
	}
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	p := filepath.Join(s.path, s.table, s.shard)
	err := Save(p, k.Path(), value)
	if err == nil && s.debug {
		log.Info().Str("path", p).Str("file", k.Path()).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(filepath.Join(s.path, s.table, s.shard), k.Path(), value)
}
