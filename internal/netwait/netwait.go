// Package netwait blocks until a TCP endpoint accepts connections.
package netwait

import (
	"context"
	"net"
	"time"

	appLog "portalcal/internal/log"
)

// Until dials addr ("host:port") every interval until a connection
// succeeds. It gives up only when ctx is done.
func Until(ctx context.Context, addr string, interval time.Duration) error {
	d := net.Dialer{Timeout: interval}
	for attempt := 1; ; attempt++ {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			if attempt > 1 {
				appLog.Info("network reachable", "addr", addr, "attempts", attempt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		appLog.Warn("network not reachable, retrying", "addr", addr, "err", err, "in", interval.String())

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
