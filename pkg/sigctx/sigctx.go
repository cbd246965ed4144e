package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals stop the storefront and the maintenance commands.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext is cancelled by the first of [Signals] or by the
// returned func, which also stops the signal relay.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithParent(context.Background())
}

func WithParent(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
