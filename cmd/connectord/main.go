package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/utxo-connector/internal/config"
	"github.com/tdex-network/utxo-connector/internal/core/application/connector"
	"github.com/tdex-network/utxo-connector/internal/core/ports"
	dbbadger "github.com/tdex-network/utxo-connector/internal/infrastructure/storage/db/badger"
	unspentsource "github.com/tdex-network/utxo-connector/internal/infrastructure/unspent-source"
	httpinterface "github.com/tdex-network/utxo-connector/internal/interfaces/http"
)

const restoreTimeout = time.Minute

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	var dbManager ports.DbManager
	if config.GetBool(config.PersistLocksKey) {
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		badgerDb, err := dbbadger.NewDbManager(dbDir, log.StandardLogger())
		if err != nil {
			log.WithError(err).Fatal("failed to open lock journal")
		}
		log.RegisterExitHandler(badgerDb.Close)
		dbManager = badgerDb
		log.Infof("lock journal opened at %s", dbDir)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := connector.NewMetrics(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	manager, err := newManager(dbManager, metrics)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize connectors")
	}

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	err = manager.RestoreAll(ctx)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to restore locked utxos")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:  fmt.Sprintf(":%d", config.GetInt(config.ListenPortKey)),
		Manager:  manager,
		Gatherer: reg,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.Info("starting daemon")
	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	log.Infof("connected chains: %v", manager.Chains())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")
	svc.Stop()
	log.Exit(0)
}

func newManager(
	dbManager ports.DbManager, metrics *connector.Metrics,
) (*connector.Manager, error) {
	connectors := make([]connector.WalletConnector, 0, len(config.GetChains()))
	for _, chainCfg := range config.GetChains() {
		prefixes, err := chainCfg.Prefixes()
		if err != nil {
			return nil, fmt.Errorf("chain %s: %s", chainCfg.Name, err)
		}
		source, err := unspentsource.NewUnspentSource(chainCfg.UnspentSourceConfig())
		if err != nil {
			return nil, fmt.Errorf("chain %s: %s", chainCfg.Name, err)
		}
		if closer, ok := source.(interface{ Close() }); ok {
			log.RegisterExitHandler(closer.Close)
		}

		var store ports.LockStore
		if dbManager != nil {
			store = dbManager.LockStore(chainCfg.Name)
		}

		c, err := connector.NewWalletConnector(connector.Config{
			Chain:    chainCfg.Name,
			Prefixes: *prefixes,
			Source:   source,
			Store:    store,
			Metrics:  metrics,
		})
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)

		log.WithFields(log.Fields{
			"chain":  chainCfg.Name,
			"source": chainCfg.Source.Type,
		}).Info("chain connected")
	}

	return connector.NewManager(connectors...)
}
