package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	registrypersistence "github.com/jaydenmetz/realty-core/modules/registry/infrastructure/persistence"
	registryservices "github.com/jaydenmetz/realty-core/modules/registry/services"
	"github.com/jaydenmetz/realty-core/pkg/composables"
	"github.com/jaydenmetz/realty-core/pkg/configuration"
	"github.com/jaydenmetz/realty-core/pkg/schema"
)

// Assigns the full identifier set to legacy rows imported without one. Safe
// to re-run; rows that already carry identifiers are never touched.
func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	var (
		teamFlag   = flag.String("team", "", "team uuid to backfill (required)")
		entityFlag = flag.String("entity", "", "entity type to backfill; empty runs every type")
	)
	flag.Parse()

	conf := configuration.Use()
	logger := conf.Logger()

	teamID, err := uuid.Parse(*teamFlag)
	if err != nil {
		logger.Fatalf("-team must be a uuid: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := schema.Migrate(ctx, conf.Database.Opts, conf.MigrationsDir); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	allocator := registryservices.NewAllocatorService(
		registrypersistence.NewSequenceRepository(),
		conf.Registry.DisplayPadWidth,
		logger,
	)
	backfill := registryservices.NewBackfillService(
		allocator,
		registrypersistence.NewBackfillRepository(),
		logger,
	)

	var assigned int
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var runErr error
		if *entityFlag == "" {
			assigned, runErr = backfill.RunAll(txCtx, teamID)
			return runErr
		}
		entityType, parseErr := identifier.ParseEntityType(*entityFlag)
		if parseErr != nil {
			return parseErr
		}
		assigned, runErr = backfill.Run(txCtx, teamID, entityType)
		return runErr
	})
	if err != nil {
		logger.WithError(err).Fatal("backfill failed, no identifiers were assigned")
	}
	logger.Infof("backfill complete, %d records assigned", assigned)
	configuration.Use().Unload()
}
