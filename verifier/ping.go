// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/go-ping/ping"
	"github.com/thediveo/lxkns/ops"
)

// pingAddr pings the specified address and returns nil if enough ping replies
// came back, otherwise an error. The ping is automatically aborted when the
// specified context either meets its deadline or gets cancelled.
//
// Please note that you should use IP address literals instead of DNS names in
// case you want precise control over the specific IP address to validate.
func (v *Verifier) pingAddr(ctx context.Context, addr string) error {
	pingfn := func() interface{} {
		// A quick and non-blocking check to see if the context has been
		// cancelled before we start our work...
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pinger, err := ping.NewPinger(addr)
		if err != nil {
			return err
		}
		pinger.SetPrivileged(!v.unprivileged)
		pinger.Count = v.count
		pinger.Interval = v.interval
		// Always limit waiting for the last ping to get reflected (or not)!
		pinger.Timeout = time.Duration(int64(v.interval) * int64(v.count+2))
		// While the ping will be running, we need to monitor the context in
		// case it becomes "done". The done channel here works "the other way
		// round" in the sense that it terminates the concurrent context
		// monitoring.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				pinger.Stop()
			case <-done:
			}
		}()
		if err = pinger.Run(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stats := pinger.Statistics()
		if stats.PacketsRecv < pinger.Count*int(v.thresholdPercentage)/100 {
			return errors.New("no replies or too many losses")
		}
		return nil
	}
	if v.netns == nil {
		if res := pingfn(); res != nil {
			return res.(error)
		}
		return nil
	}
	// lxkns' ops.Execute differentiates between a namespace switching error
	// and the result of the function called in the switched namespaces.
	res, err := ops.Execute(pingfn, v.netns)
	if err != nil {
		return err
	}
	if res != nil {
		return res.(error)
	}
	return nil
}
