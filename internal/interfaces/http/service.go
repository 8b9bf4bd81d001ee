package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/utxo-connector/internal/core/application/connector"
	interfaces "github.com/tdex-network/utxo-connector/internal/interfaces"
)

const shutdownTimeout = 5 * time.Second

type ServiceOpts struct {
	Address  string
	Manager  *connector.Manager
	Gatherer prometheus.Gatherer
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return fmt.Errorf("missing listening address")
	}
	if o.Manager == nil {
		return fmt.Errorf("connector manager must not be null")
	}
	return nil
}

type service struct {
	server *http.Server
}

// NewService returns the HTTP interface of the daemon.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	return &service{
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           NewHandler(opts.Manager, opts.Gatherer),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start binds the listening address and serves requests in background.
func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http: server stopped unexpectedly")
		}
	}()

	log.Infof("http interface listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http: failed to gracefully shutdown server")
	}
	log.Debug("http interface stopped")
}
