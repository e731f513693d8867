package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	commissionpersistence "github.com/jaydenmetz/realty-core/modules/commission/infrastructure/persistence"
	commissioncontrollers "github.com/jaydenmetz/realty-core/modules/commission/presentation/controllers"
	commissionservices "github.com/jaydenmetz/realty-core/modules/commission/services"
	crmpersistence "github.com/jaydenmetz/realty-core/modules/crm/infrastructure/persistence"
	crmcontrollers "github.com/jaydenmetz/realty-core/modules/crm/presentation/controllers"
	crmservices "github.com/jaydenmetz/realty-core/modules/crm/services"
	registrypersistence "github.com/jaydenmetz/realty-core/modules/registry/infrastructure/persistence"
	registryservices "github.com/jaydenmetz/realty-core/modules/registry/services"
	"github.com/jaydenmetz/realty-core/pkg/composables"
	"github.com/jaydenmetz/realty-core/pkg/configuration"
	"github.com/jaydenmetz/realty-core/pkg/httpapi"
	"github.com/jaydenmetz/realty-core/pkg/metrics"
	"github.com/jaydenmetz/realty-core/pkg/middleware"
	"github.com/jaydenmetz/realty-core/pkg/schema"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	if err := schema.Migrate(ctx, conf.Database.Opts, conf.MigrationsDir); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	allocator := registryservices.NewAllocatorService(
		registrypersistence.NewSequenceRepository(),
		conf.Registry.DisplayPadWidth,
		logger,
	)
	engine := commissionservices.NewTierEngine(
		commissionpersistence.NewSplitRuleRepository(),
		commissionpersistence.NewRecordRepository(),
		commissionservices.Config{
			Fees: commission.FeeSchedule{
				TransactionFee:  conf.Commission.TransactionFeeAmount(),
				CoordinationFee: conf.Commission.CoordinationFeeAmount(),
				FranchiseRate:   conf.Commission.FranchiseRateValue(),
			},
			Caps: commission.CapThresholds{
				MidTier: conf.Commission.MidTierThreshold(),
				PostCap: conf.Commission.PostCapThreshold(),
			},
			FallbackSplit: conf.Commission.FallbackSplitValue(),
		},
		logger,
	)
	teams := crmservices.NewTeamService(crmpersistence.NewTeamRepository())
	records := crmservices.NewRecordService(
		crmpersistence.NewTeamRepository(),
		crmpersistence.NewRecordRepository(),
		allocator,
		engine,
		logger,
	)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	})

	controllers := []httpapi.Controller{
		crmcontrollers.NewTeamsAPIController(teams),
		crmcontrollers.NewRecordsAPIController(records),
		commissioncontrollers.NewCommissionAPIController(engine),
	}
	if conf.Prometheus.Enabled {
		controllers = append(controllers, metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	for _, c := range controllers {
		c.Register(router)
		logger.WithField("controller", c.Key()).Debug("registered controller")
	}

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	configuration.Use().Unload()
}
