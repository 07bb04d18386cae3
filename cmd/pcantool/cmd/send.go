package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go"
	"github.com/roffe/pcanbus"
	"github.com/roffe/pcanbus/pkg/bar"
	"github.com/roffe/pcanbus/pkg/pcan"
	"github.com/spf13/cobra"
)

const (
	flagCount    = "count"
	flagInterval = "interval"
	flagRetries  = "retries"
)

func init() {
	f := sendCmd.Flags()
	f.IntP(flagCount, "n", 1, "number of frames to send")
	f.Duration(flagInterval, 0, "pause between frames")
	f.Uint(flagRetries, 3, "attempts per frame while the transmit queue is full")
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send <id>#<data>",
	Short: "send frames, e.g. 123#DEADBEEF, 18DAF110#01, 7DF#R or 100##1AABB for FD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		frame, err := parseFrame(args[0])
		if err != nil {
			return err
		}
		count, _ := cmd.Flags().GetInt(flagCount)
		interval, _ := cmd.Flags().GetDuration(flagInterval)
		attempts, _ := cmd.Flags().GetUint(flagRetries)

		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()

		var progress interface{ Add(int) error }
		if count > 1 {
			pb := bar.New(count, "sending")
			defer pb.Finish()
			progress = pb
		}

		start := time.Now()
		for i := 0; i < count && ctx.Err() == nil; i++ {
			err := retry.Do(func() error {
				return bus.Send(frame)
			},
				retry.Context(ctx),
				retry.Attempts(max(attempts, 1)),
				retry.Delay(time.Millisecond),
				retry.RetryIf(transmitQueueFull),
				retry.OnRetry(func(n uint, err error) {
					log.Printf("retry #%d: %v", n+1, err)
				}),
				retry.LastErrorOnly(true),
			)
			if err != nil {
				return err
			}
			if progress != nil {
				progress.Add(1)
			}
			if interval > 0 {
				time.Sleep(interval)
			}
		}
		if count == 1 {
			fmt.Println(frame.ColorString())
		}
		log.Printf("%s in %s", bus.Stats(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func transmitQueueFull(err error) bool {
	var derr *pcanbus.DeviceError
	if !errors.As(err, &derr) {
		return false
	}
	return derr.Status.Has(pcan.StatusXmtFull | pcan.StatusQXmtFull)
}
