//go:build linux

package cmd

import (
	"context"
	"log"
	"time"

	"github.com/brutella/can"
	"github.com/roffe/pcanbus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	bridgeCmd.Flags().Duration(flagTimeout, 10*time.Millisecond, "PCAN receive timeout per read")
	rootCmd.AddCommand(bridgeCmd)
}

func (l *lockedBus) send(f *pcanbus.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.Send(f)
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge <ifname>",
	Short: "forward classic frames between a PCAN channel and a SocketCAN interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration(flagTimeout)
		if timeout < 0 {
			timeout = 10 * time.Millisecond
		}

		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()
		lb := &lockedBus{bus: bus}

		sc, err := can.NewBusForInterfaceWithName(args[0])
		if err != nil {
			return err
		}
		sc.SubscribeFunc(func(frame can.Frame) {
			if err := lb.send(pcanbus.FromSocketCAN(frame)); err != nil {
				log.Printf("%s -> %s: %v", args[0], bus.Channel(), err)
			}
		})

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			if err := sc.ConnectAndPublish(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return sc.Disconnect()
		})
		g.Go(func() error {
			return bridgeFrames(ctx, lb, sc, timeout)
		})
		log.Printf("bridging %s <-> %s", bus.Channel(), args[0])
		return g.Wait()
	},
}

func bridgeFrames(ctx context.Context, lb *lockedBus, sc *can.Bus, timeout time.Duration) error {
	for ctx.Err() == nil {
		frame, err := lb.recv(timeout)
		if err != nil {
			return err
		}
		if frame == nil {
			continue
		}
		cf, err := pcanbus.ToSocketCAN(frame)
		if err != nil {
			log.Printf("dropped %s: %v", frame, err)
			continue
		}
		if err := sc.Publish(cf); err != nil {
			return err
		}
	}
	return nil
}
