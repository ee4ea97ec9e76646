// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SignalHandler blocks until either an exit signal is delivered to the
// process or the given context is canceled. The received signal, if any,
// is returned as an error so it can be reported by the caller.
func SignalHandler(ctx context.Context) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGABRT, syscall.SIGTERM)
	select {
	case sig := <-c:
		return fmt.Errorf("%s", sig)
	case <-ctx.Done():
		return nil
	}
}
