package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/hrsaas/hrcore/modules/hrm/domain/aggregates/transfer"
	"github.com/hrsaas/hrcore/modules/hrm/infrastructure/persistence"
	"github.com/hrsaas/hrcore/modules/hrm/services"
	"github.com/hrsaas/hrcore/pkg/composables"
	"github.com/hrsaas/hrcore/pkg/configuration"
	"github.com/hrsaas/hrcore/pkg/eventbus"
	"github.com/hrsaas/hrcore/pkg/metrics"
	"github.com/hrsaas/hrcore/pkg/outbox"
	eventbusdispatcher "github.com/hrsaas/hrcore/pkg/outbox/dispatchers/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(poolCtx, conf.Database.Opts)
	if err != nil {
		log.Fatalf("failed to create database pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(poolCtx); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}

	outboxTable, err := outbox.ParseIdentifier(conf.Outbox.RelayTable)
	if err != nil {
		log.Fatalf("invalid OUTBOX_RELAY_TABLE: %v", err)
	}

	bus := eventbus.NewEventPublisher(logger)
	svc := buildTransferService(outboxTable, bus, logger)
	bus.Subscribe(logCompletedTransfers(logger, pool, svc))

	startOutboxBackground(ctx, conf, pool, outboxTable, logger, bus)

	srv := metrics.NewServer(metrics.ServerOptions{
		Addr: conf.MetricsAddress,
		Path: conf.PrometheusPath,
		Pool: pool,
	})
	go func() {
		logger.WithField("addr", srv.Addr).Info("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("metrics server shutdown failed")
	}
}

// buildTransferService assembles the persistence layer and the transfer
// workflow on top of it.
func buildTransferService(
	outboxTable pgx.Identifier,
	bus eventbus.EventBusWithError,
	logger *logrus.Logger,
) *services.TransferService {
	transfers := persistence.NewTransferRepository()
	employees := persistence.NewEmployeeRepository()
	rules := persistence.NewNumberingRuleRepository()
	histories := persistence.NewHistoryRepository()

	generator := services.NewEmployeeNumberGenerator(rules, employees, nil)
	recorder := services.NewHistoryRecorder(histories)

	return services.NewTransferService(
		transfers,
		employees,
		generator,
		recorder,
		outbox.NewPublisher(),
		outboxTable,
		bus,
		logger,
	)
}

// logCompletedTransfers consumes relayed completion facts. Downstream
// systems (payroll, access provisioning) subscribe the same way.
func logCompletedTransfers(
	logger *logrus.Logger,
	pool *pgxpool.Pool,
	svc *services.TransferService,
) func(meta *outbox.Meta, topic string, payload json.RawMessage) error {
	return func(meta *outbox.Meta, topic string, payload json.RawMessage) error {
		if topic != transfer.CompletedTopic {
			return nil
		}
		var fact transfer.CompletedEvent
		if err := json.Unmarshal(payload, &fact); err != nil {
			return err
		}
		fields := logrus.Fields{
			"transfer_request_id": fact.TransferRequestID,
			"source_tenant_id":    fact.SourceTenantID,
			"target_tenant_id":    fact.TargetTenantID,
			"attempts":            meta.Attempts,
		}

		reportCtx := composables.WithPool(composables.WithTenantID(context.Background(), fact.SourceTenantID), pool)
		if summary, err := svc.Summary(reportCtx); err == nil {
			fields["source_pending_outgoing"] = summary.PendingOutgoing
			fields["source_completed"] = summary.Completed
		}

		logger.WithFields(fields).Info("transfer completion fact delivered")
		return nil
	}
}

func startOutboxBackground(
	ctx context.Context,
	conf *configuration.Configuration,
	pool *pgxpool.Pool,
	table pgx.Identifier,
	logger *logrus.Logger,
	bus eventbus.EventBusWithError,
) {
	outboxLog := logger.WithField("component", "outbox")

	if conf.Outbox.RelayEnabled {
		relay, err := outbox.NewRelay(pool, table, eventbusdispatcher.New(bus), outbox.RelayOptions{
			PollInterval:    conf.Outbox.RelayPollInterval,
			BatchSize:       conf.Outbox.RelayBatchSize,
			LockTTL:         conf.Outbox.RelayLockTTL,
			MaxAttempts:     conf.Outbox.RelayMaxAttempts,
			LastErrorMaxLen: conf.Outbox.LastErrorMaxBytes,
			DispatchTimeout: conf.Outbox.RelayDispatchTimeout,
			Logger:          outboxLog.WithField("table", outbox.TableLabel(table)),
		})
		if err != nil {
			outboxLog.WithError(err).Warn("outbox: failed to create relay")
		} else {
			go func() {
				if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					outboxLog.WithError(err).Error("outbox: relay stopped")
				}
			}()
		}
	}

	if conf.Outbox.CleanerEnabled {
		cleaner, err := outbox.NewCleaner(pool, table, outbox.CleanerOptions{
			Enabled:               true,
			Interval:              conf.Outbox.CleanerInterval,
			Retention:             conf.Outbox.CleanerRetention,
			DeadRetention:         conf.Outbox.CleanerDeadRetention,
			DeadAttemptsThreshold: conf.Outbox.RelayMaxAttempts,
			Logger:                outboxLog.WithField("table", outbox.TableLabel(table)),
		})
		if err != nil {
			outboxLog.WithError(err).Warn("outbox: failed to create cleaner")
		} else {
			go func() {
				if err := cleaner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					outboxLog.WithError(err).Error("outbox: cleaner stopped")
				}
			}()
		}
	}
}
