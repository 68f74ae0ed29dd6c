package experiment

import (
	"context"

	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/store"
	"github.com/samuelfneumann/tabular/store/filestore"
	"github.com/samuelfneumann/tabular/store/ldbstore"
	"github.com/samuelfneumann/tabular/store/redisstore"
)

// Open opens the store.Store described by the StoreConfig
func (c StoreConfig) Open(ctx context.Context) (store.Store, error) {
	switch c.Kind {
	case FileStore:
		return filestore.New(c.Path), nil
	case LevelDBStore:
		return ldbstore.Open(c.Path, nil)
	case RedisStore:
		return redisstore.New(ctx, redisstore.Config{
			Address: c.Addr,
			Prefix:  c.Prefix,
		})
	default:
		return nil, errs.New(errs.InvalidConfiguration, "open: no such "+
			"store %q", c.Kind)
	}
}
