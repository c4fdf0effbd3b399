package realtime

import "time"

// Config tunes the realtime coordinator. Zero values fall back to defaults,
// so callers only set what they need.
type Config struct {
	// GraceWindow delays the user:offline emit after the last connection
	// drops; a reconnect inside the window cancels it.
	GraceWindow time.Duration

	// TypingTTL is how long a typing indicator lives without a refresh.
	TypingTTL time.Duration

	// TypingCoalesce suppresses repeat typing:start broadcasts from clients
	// that emit on every keystroke.
	TypingCoalesce time.Duration

	// TypingSweepInterval is how often expired indicators are collected.
	TypingSweepInterval time.Duration

	// IdleTimeout unregisters connections with no inbound frames, catching
	// half-open transports the peer never closed.
	IdleTimeout time.Duration

	// IdleSweepInterval is how often the registry scans for idle connections.
	IdleSweepInterval time.Duration

	// SendQueueSize bounds each connection's outbound queue. A subscriber
	// that falls this far behind is dropped rather than stalling its room.
	SendQueueSize int
}

func (c Config) withDefaults() Config {
	if c.GraceWindow <= 0 {
		c.GraceWindow = 5 * time.Second
	}
	if c.TypingTTL <= 0 {
		c.TypingTTL = 6 * time.Second
	}
	if c.TypingCoalesce <= 0 {
		c.TypingCoalesce = 2 * time.Second
	}
	if c.TypingSweepInterval <= 0 {
		c.TypingSweepInterval = 2 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 90 * time.Second
	}
	if c.IdleSweepInterval <= 0 {
		c.IdleSweepInterval = 30 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	return c
}
