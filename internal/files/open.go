package files

import (
	"fmt"

	"github.com/harrylevesque/qrscan/internal/crypto"
	"github.com/harrylevesque/qrscan/internal/utils"
)

// Open builds the store selected by cfg. With cfg.Encrypt the JSON store is
// sealed with a key derived from the master key.
func Open(cfg *utils.Config) (ScanStore, error) {
	switch cfg.Store {
	case utils.StoreSQLite:
		return NewSQLiteStore(cfg.StorePath, cfg.DedupWindow())
	case utils.StoreJSON, "":
		var key []byte
		if cfg.Encrypt {
			master, err := crypto.ReadMasterKey(cfg.KeyFile)
			if err != nil {
				return nil, err
			}
			if key, err = crypto.DeriveStoreKey(master); err != nil {
				return nil, err
			}
		}
		return NewJSONStore(cfg.StorePath, key, cfg.DedupWindow())
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
