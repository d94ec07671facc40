package machport

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/MachPort/internal/logging"
)

// Release failures at Close time have no caller to return to when they happen
// alongside another error, so they are also reported through this logger.
var pkgLogger atomic.Pointer[zap.Logger]

// SetLogger replaces the package diagnostic logger. Pass zap.NewNop() to
// silence the library. Safe for concurrent use.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	l := logging.NewDefault().Logger
	if pkgLogger.CompareAndSwap(nil, l) {
		return l
	}
	return pkgLogger.Load()
}
