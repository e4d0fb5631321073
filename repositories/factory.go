package repositories

import (
	"context"
	"fmt"

	"gemini-chat/config"
)

// Open builds the store selected by storage.driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "mongo", "mongodb":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
