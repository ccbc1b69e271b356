package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KilimcininKorOglu/nspid/internal/acl"
	"github.com/KilimcininKorOglu/nspid/internal/codepage"
	"github.com/KilimcininKorOglu/nspid/internal/config"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/directory/boltstore"
	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/rest"
	"github.com/KilimcininKorOglu/nspid/internal/server"
)

// ErrRESTDisabled is returned by serve when no transport is enabled.
var ErrRESTDisabled = errors.New("rest adapter is disabled; nothing to serve")

// NSPIServer represents a running address book server instance.
type NSPIServer struct {
	config     *config.Config
	logger     logging.Logger
	store      *directory.Store
	nspi       *server.Server
	restServer *rest.Server
	acl        *acl.Evaluator
	configFile string
	pidFile    string
}

// NewServer builds the address book, the NSPI facade and the REST
// adapter from cfg.
func NewServer(cfg *config.Config, logger logging.Logger) (*NSPIServer, error) {
	sysLogger := logger.WithSource("system")

	store, err := openStore(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	srv, evaluator, err := newFacade(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	var restServer *rest.Server
	if cfg.REST.Enabled {
		restServer = rest.NewServer(rest.ConfigFrom(cfg.REST), srv, logger)
		sysLogger.Info("REST API enabled", "address", cfg.REST.Address)
	}

	return &NSPIServer{
		config:     cfg,
		logger:     logger,
		store:      store,
		nspi:       srv,
		restServer: restServer,
		acl:        evaluator,
	}, nil
}

// openStore builds the store from the seed file and overlays persisted
// modifications when storage.path is set.
func openStore(cfg *config.Config, logger logging.Logger) (*directory.Store, error) {
	seed, err := directory.LoadSeed(cfg.Directory.SeedFile)
	if err != nil {
		return nil, err
	}

	var opts []directory.Option
	var db *boltstore.Store
	if cfg.Storage.Path != "" {
		db, err = boltstore.Open(cfg.Storage.Path, boltstore.Options{
			Timeout: cfg.Storage.Timeout,
			NoSync:  cfg.Storage.NoSync,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, directory.WithPersister(db))
	}

	store, err := seed.Build(opts...)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build address book: %w", err)
	}

	restored, err := store.Restore()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("restore address book: %w", err)
	}

	logger.Info("address book loaded",
		"seed", cfg.Directory.SeedFile,
		"objects", store.Len(),
		"restored", restored,
		"persistent", db != nil,
	)
	return store, nil
}

// newFacade creates the NSPI server over store. The returned evaluator
// is the one the server checks modifications against.
func newFacade(cfg *config.Config, store *directory.Store, logger logging.Logger) (*server.Server, *acl.Evaluator, error) {
	scfg, err := server.ConfigFrom(cfg)
	if err != nil {
		return nil, nil, err
	}
	registry, err := codepage.NewRegistry(cfg.Codepages.Supported)
	if err != nil {
		return nil, nil, err
	}
	aclConfig, err := acl.FromConfig(cfg.ACL)
	if err != nil {
		return nil, nil, fmt.Errorf("acl: %w", err)
	}

	evaluator := acl.NewEvaluator(aclConfig)
	srv := server.New(store, scfg,
		server.WithLogger(logger.WithSource("nspi")),
		server.WithRegistry(registry),
		server.WithACL(evaluator),
	)
	return srv, evaluator, nil
}

// Run serves until ctx is cancelled or a transport fails, then shuts
// down within the configured timeout.
func (s *NSPIServer) Run(ctx context.Context) error {
	if s.restServer == nil {
		return ErrRESTDisabled
	}

	if err := s.writePIDFile(); err != nil {
		return err
	}
	defer s.removePIDFile()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.restServer.ListenAndServe()
	})

	g.Go(func() error {
		s.watchReload(gctx, hup)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", "guid", s.nspi.GUID().String())

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.restServer.Shutdown(shutdownCtx)
	})

	s.logger.Info("server started",
		"guid", s.nspi.GUID().String(),
		"version", version,
	)

	return g.Wait()
}

// Close releases the store and its persister.
func (s *NSPIServer) Close() error {
	return s.store.Close()
}

func (s *NSPIServer) writePIDFile() error {
	if s.pidFile == "" {
		return nil
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(s.pidFile, []byte(pid+"\n"), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

func (s *NSPIServer) removePIDFile() {
	if s.pidFile != "" {
		os.Remove(s.pidFile)
	}
}

type serveFlags struct {
	configFile string
	pidFile    string
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the address book server",
		Long: `Start the address book server. The address book is built from the seed
file named by directory.seedFile. When storage.path is set, certificate and
membership modifications are kept in a bolt database and survive restarts.

The server stops on SIGINT or SIGTERM. SIGHUP reloads the acl section of
the configuration file; see "nspid reload acl".`,
		Example: `  nspid serve --config /etc/nspid/config.yaml
  nspid serve --config config.yaml --pid-file /run/nspid.pid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&flags.pidFile, "pid-file", "", "Write the process ID to this file")
	return cmd
}

func runServe(ctx context.Context, flags *serveFlags) error {
	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logging.Close(logger)

	srv, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()
	srv.configFile = flags.configFile
	srv.pidFile = flags.pidFile

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		return err
	}
	return nil
}
