package archtable

import "go.uber.org/zap"

// Config holds process-wide tunables for table construction and
// diagnostics. It is not per-registry state; every EntityRegistry in
// the process shares it.
var Config config = config{
	ChunkBytes:  16 * 1024,
	MinCapacity: 8,
}

type config struct {
	// ChunkBytes is the target per-table payload size used to derive a
	// table's default capacity when none is given explicitly.
	ChunkBytes uintptr
	// MinCapacity is the floor applied to the derived default capacity,
	// regardless of how large a single entity's row is.
	MinCapacity int
	logger      *zap.SugaredLogger
}

// SetLogger installs a logger used for EntityRegistry lifecycle
// diagnostics (archetype creation, table growth) at Debug level. Pass
// nil to silence logging again, which is also the default.
func (c *config) SetLogger(logger *zap.SugaredLogger) {
	c.logger = logger
}

func (c *config) debugf(template string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debugf(template, args...)
}
