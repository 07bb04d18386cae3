package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/roffe/pcanbus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	flagTimeout        = "timeout"
	flagStatusInterval = "status-interval"
	flagNoColor        = "no-color"
)

func init() {
	f := dumpCmd.Flags()
	f.Duration(flagTimeout, 100*time.Millisecond, "receive timeout per read")
	f.Duration(flagStatusInterval, 0, "print the bus status this often, 0 disables")
	f.Bool(flagNoColor, false, "disable colours")
	rootCmd.AddCommand(dumpCmd)
}

// lockedBus serializes access for the receive loop and the status ticker.
type lockedBus struct {
	mu  sync.Mutex
	bus *pcanbus.Bus
}

func (l *lockedBus) recv(timeout time.Duration) (*pcanbus.Frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.Recv(timeout)
}

func (l *lockedBus) status() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bus.StatusIsOK() {
		return color.GreenString("bus OK") + " " + l.bus.Stats().String()
	}
	return color.RedString(l.bus.StatusText()) + " " + l.bus.Stats().String()
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "print received frames until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration(flagTimeout)
		statusInterval, _ := cmd.Flags().GetDuration(flagStatusInterval)
		if noColor, _ := cmd.Flags().GetBool(flagNoColor); noColor {
			color.NoColor = true
		}
		if timeout < 0 {
			return errors.New("timeout must be positive so the dump can be interrupted")
		}

		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()
		lb := &lockedBus{bus: bus}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return dumpFrames(ctx, lb, timeout)
		})
		if statusInterval > 0 {
			g.Go(func() error {
				t := time.NewTicker(statusInterval)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-t.C:
						log.Println(lb.status())
					}
				}
			})
		}
		return g.Wait()
	},
}

func dumpFrames(ctx context.Context, lb *lockedBus, timeout time.Duration) error {
	for ctx.Err() == nil {
		frame, err := lb.recv(timeout)
		if err != nil {
			return err
		}
		if frame == nil {
			continue
		}
		fmt.Println(frame.ColorString())
	}
	return nil
}
