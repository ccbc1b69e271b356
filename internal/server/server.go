package server

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/acl"
	"github.com/KilimcininKorOglu/nspid/internal/anr"
	"github.com/KilimcininKorOglu/nspid/internal/codepage"
	"github.com/KilimcininKorOglu/nspid/internal/config"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
	"github.com/KilimcininKorOglu/nspid/internal/table"
)

// Config holds facade settings.
type Config struct {
	// GUID identifies the server in Bind replies and ephemeral entry IDs.
	GUID uuid.UUID
	// AllowAnonymous accepts binds carrying fAnonymousLogin.
	AllowAnonymous bool
	// IgnoreEntryIDDisplayType resolves entry IDs without checking their
	// display type field against the object.
	IgnoreEntryIDDisplayType bool
	// Table holds the table engine limits.
	Table table.Config
}

// DefaultConfig returns the default facade settings with a random GUID.
func DefaultConfig() Config {
	return Config{
		GUID:                     uuid.New(),
		AllowAnonymous:           true,
		IgnoreEntryIDDisplayType: true,
		Table:                    table.DefaultConfig(),
	}
}

// ConfigFrom builds facade settings from the loaded configuration. An
// empty server GUID is replaced by a random one.
func ConfigFrom(cfg *config.Config) (Config, error) {
	out := Config{
		AllowAnonymous:           cfg.Server.AllowAnonymous,
		IgnoreEntryIDDisplayType: cfg.Directory.IgnoreEntryIDDisplayType,
		Table: table.Config{
			PhoneticSort:        cfg.Directory.PhoneticSort,
			MaxRestrictionDepth: cfg.Directory.MaxRestrictionDepth,
			MaxExplicitTable:    cfg.Directory.MaxExplicitTable,
		},
	}
	if cfg.Server.GUID == "" {
		out.GUID = uuid.New()
		return out, nil
	}
	guid, err := uuid.Parse(cfg.Server.GUID)
	if err != nil {
		return Config{}, fmt.Errorf("server: invalid guid %q: %w", cfg.Server.GUID, err)
	}
	out.GUID = guid
	return out, nil
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the code page registry.
func WithRegistry(registry *codepage.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithACL sets the modification policy.
func WithACL(evaluator *acl.Evaluator) Option {
	return func(s *Server) {
		s.acl = evaluator
	}
}

// Server is the NSPI operation facade.
type Server struct {
	store     *directory.Store
	config    Config
	serverUID nspi.FlatUID

	registry  *codepage.Registry
	converter *codepage.Converter
	builder   *props.Builder
	resolver  *anr.Resolver
	engine    *table.Engine
	acl       *acl.Evaluator
	logger    logging.Logger
	sessions  *sessionRegistry
}

// New creates a facade over store.
func New(store *directory.Store, cfg Config, opts ...Option) *Server {
	s := &Server{
		store:     store,
		config:    cfg,
		serverUID: nspi.FlatUIDFromUUID(cfg.GUID),
		sessions:  newSessionRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry = codepage.DefaultRegistry()
	}
	if s.acl == nil {
		s.acl = acl.NewEvaluator(defaultACL())
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	s.converter = codepage.NewConverter(s.registry)
	s.builder = props.NewBuilder(store, s.converter, s.serverUID)
	s.resolver = anr.NewResolver(store)
	s.engine = table.NewEngine(store, cfg.Table)
	return s
}

// defaultACL grants authenticated sessions the modifications of the
// default configuration.
func defaultACL() *acl.Config {
	cfg, err := acl.FromConfig(config.DefaultConfig().ACL)
	if err != nil {
		return acl.NewConfig()
	}
	return cfg
}

// GUID returns the server GUID.
func (s *Server) GUID() uuid.UUID {
	return s.config.GUID
}

// Store returns the address book store.
func (s *Server) Store() *directory.Store {
	return s.store
}

// Session returns the session bound under handle.
func (s *Server) Session(handle string) (*Session, bool) {
	return s.sessions.get(handle)
}

// SessionCount returns the number of bound sessions.
func (s *Server) SessionCount() int {
	return s.sessions.len()
}

// rowCodePage reports whether cp can encode row output. CP_WINUNICODE is
// accepted.
func (s *Server) rowCodePage(cp uint32) bool {
	return s.registry.Supports(cp)
}

// eightBitCodePage reports whether cp can be used where only 8-bit output
// is produced. CP_WINUNICODE is rejected.
func (s *Server) eightBitCodePage(cp uint32) bool {
	return cp != nspi.CodePageWinUnicode && s.registry.Supports(cp)
}

// rowOptions returns the builder options for a row operation.
func rowOptions(flags uint32, stat nspi.STAT) props.Options {
	return props.Options{
		Flags:       flags,
		CodePage:    stat.CodePage,
		ContainerID: stat.ContainerID,
	}
}

// trace logs one operation at debug level.
func (s *Server) trace(op string, code nspi.ErrorCode, stat nspi.STAT, keysAndValues ...interface{}) {
	kv := append([]interface{}{
		"op", op,
		"code", code.String(),
		"container", stat.ContainerID,
		"current_rec", uint32(stat.CurrentRec),
	}, keysAndValues...)
	s.logger.Debug("nspi operation", kv...)
}
