package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/roffe/pcanbus"
	"github.com/roffe/pcanbus/pkg/pcan"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:          "pcantool",
	Short:        "PCAN swiss army tool",
	Long:         `Send, dump and inspect traffic on PEAK-System PCAN channels`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagChannel    = "channel"
	flagBitrate    = "bitrate"
	flagFD         = "fd"
	flagListenOnly = "listen-only"
	flagPoll       = "poll"
	flagLoopback   = "loopback"
	flagDebug      = "debug"
	flagStrict     = "strict-bitrate"

	flagFClock    = "f-clock"
	flagBRP       = "brp"
	flagTSeg1     = "tseg1"
	flagTSeg2     = "tseg2"
	flagSJW       = "sjw"
	flagDataBRP   = "data-brp"
	flagDataTSeg1 = "data-tseg1"
	flagDataTSeg2 = "data-tseg2"
	flagDataSJW   = "data-sjw"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagChannel, "c", pcanbus.DefaultChannel, "channel name, ? = select from list")
	pf.IntP(flagBitrate, "b", pcanbus.DefaultBitrate, "classic bitrate in bit/s")
	pf.Bool(flagFD, false, "open the channel in CAN FD mode")
	pf.Bool(flagListenOnly, false, "passive mode, never transmit")
	pf.Bool(flagPoll, false, "poll the receive queue instead of waiting on events")
	pf.Bool(flagLoopback, false, "use the in-memory loopback device instead of PCANBasic")
	pf.BoolP(flagDebug, "d", false, "debug mode")
	pf.Bool(flagStrict, false, "fail on bitrates missing from the rate table")

	pf.Uint32(flagFClock, 0, "controller clock in Hz, enables explicit timing")
	pf.Uint32(flagBRP, 0, "nominal bitrate prescaler")
	pf.Uint32(flagTSeg1, 0, "nominal time segment 1")
	pf.Uint32(flagTSeg2, 0, "nominal time segment 2")
	pf.Uint32(flagSJW, 1, "nominal synchronization jump width")
	pf.Uint32(flagDataBRP, 0, "data phase bitrate prescaler")
	pf.Uint32(flagDataTSeg1, 0, "data phase time segment 1")
	pf.Uint32(flagDataTSeg2, 0, "data phase time segment 2")
	pf.Uint32(flagDataSJW, 1, "data phase synchronization jump width")
}

func openDevice(loopback bool) (pcan.Device, error) {
	if loopback {
		return pcan.NewLoopback(), nil
	}
	return pcan.Load()
}

func selectChannel() (string, error) {
	prompt := promptui.Select{
		Label: "Channel",
		Items: pcan.ChannelNames(),
		Size:  16,
	}
	_, result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return result, nil
}

func timingFromFlags(pf *pflag.FlagSet, brp, tseg1, tseg2, sjw string) (*pcanbus.BitTiming, error) {
	if !pf.Changed(brp) {
		return nil, nil
	}
	bt := &pcanbus.BitTiming{}
	var err error
	for _, f := range []struct {
		name string
		dst  *uint32
	}{
		{flagFClock, &bt.FClock},
		{brp, &bt.BRP},
		{tseg1, &bt.TSeg1},
		{tseg2, &bt.TSeg2},
		{sjw, &bt.SJW},
	} {
		if *f.dst, err = pf.GetUint32(f.name); err != nil {
			return nil, err
		}
	}
	return bt, nil
}

func configFromFlags(cmd *cobra.Command) (*pcanbus.Config, error) {
	pf := cmd.Flags()
	channel, err := pf.GetString(flagChannel)
	if err != nil {
		return nil, err
	}
	if channel == "?" {
		if channel, err = selectChannel(); err != nil {
			return nil, err
		}
	}
	cfg := &pcanbus.Config{Channel: channel}
	if cfg.Bitrate, err = pf.GetInt(flagBitrate); err != nil {
		return nil, err
	}
	if cfg.FD, err = pf.GetBool(flagFD); err != nil {
		return nil, err
	}
	if listenOnly, _ := pf.GetBool(flagListenOnly); listenOnly {
		cfg.State = pcanbus.StatePassive
	}
	cfg.Polling, _ = pf.GetBool(flagPoll)
	cfg.Debug, _ = pf.GetBool(flagDebug)
	cfg.StrictBitrate, _ = pf.GetBool(flagStrict)

	if cfg.Timing, err = timingFromFlags(pf, flagBRP, flagTSeg1, flagTSeg2, flagSJW); err != nil {
		return nil, err
	}
	if cfg.DataTiming, err = timingFromFlags(pf, flagDataBRP, flagDataTSeg1, flagDataTSeg2, flagDataSJW); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openBus(cmd *cobra.Command) (*pcanbus.Bus, error) {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	loopback, _ := cmd.Flags().GetBool(flagLoopback)
	dev, err := openDevice(loopback)
	if err != nil {
		return nil, err
	}
	bus, err := pcanbus.Open(dev, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Channel, err)
	}
	return bus, nil
}
