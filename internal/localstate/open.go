package localstate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and locates a backend.
type Options struct {
	Backend     string
	Path        string // sqlite/file; empty means DefaultPath
	RedisAddr   string
	RedisPrefix string
}

// Open builds the Store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendSQLite
	}
	path := opts.Path
	if path == "" && (backend == BackendSQLite || backend == BackendFile) {
		p, err := DefaultPath(backend)
		if err != nil {
			return nil, err
		}
		path = p
	}

	log.Debug().Str("backend", backend).Str("path", path).Msg("opening local state")

	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return OpenFile(path)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires an address")
		}
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = "tripplanner:"
		}
		return OpenRedis(ctx, opts.RedisAddr, prefix)
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
