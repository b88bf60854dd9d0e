package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"classroom-notes-go/config"
	"classroom-notes-go/db"
)

// openNotesRepository creates the process-wide store client, makes sure the
// backing storage is ready and returns the repository built on it, with a
// func that releases the client.
func openNotesRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (db.NotesRepository, func(), error) {
	dbLog := log.Named("db")

	switch cfg.Store.Backend {
	case config.BackendDynamo:
		client, err := db.NewDynamoClient(ctx, db.DynamoOptions{
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Region:          cfg.AWS.Region,
			Endpoint:        cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}

		desc, err := db.NewProvisioner(client, cfg.Store.Table, dbLog).EnsureTable(ctx)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Notes table ready",
			zap.String("table", cfg.Store.Table),
			zap.String("status", string(desc.TableStatus)))
		return db.NewDynamoService(client, cfg.Store.Table, dbLog), func() {}, nil

	case config.BackendRedis:
		client, err := db.InitializeRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to Redis")
		return db.NewRedisService(client, dbLog), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
