package notary

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config configures a notary instance. Only Paths[0] is used at the
// moment; future versions may use multiple paths for sharding or tiering.
type Config struct {
	// Paths contains data directories. Empty means the chain lives in
	// memory only and is lost on Close.
	Paths []string
	// MinimumFreeGB is a free-space threshold for on-disk operation.
	MinimumFreeGB int
	// Difficulty is the number of leading zero bits a sealed block digest
	// must carry. 0 disables the nonce search.
	Difficulty uint32
	// Logger is an optional structured logger. If nil, a stderr logger is used.
	Logger *logrus.Logger
	// Clock supplies block timestamps. If nil, the system clock is used.
	Clock func() time.Time
}

func defaultLogger() *logrus.Logger {
	return logrus.New()
}
