package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const flagDuration = "duration"

func init() {
	flashCmd.Flags().Duration(flagDuration, 5*time.Second, "how long the LED flashes")
	rootCmd.AddCommand(statusCmd, resetCmd, flashCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the controller status of a channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()
		st := bus.Status()
		if bus.StatusIsOK() {
			fmt.Printf("%s: %s\n", bus.Channel(), color.GreenString("OK"))
			return nil
		}
		fmt.Printf("%s: 0x%X\n%s\n", bus.Channel(), uint32(st), color.RedString(bus.StatusText()))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "clear the channel queues after a bus error",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()
		if !bus.Reset() {
			return fmt.Errorf("reset of %s failed: %s", bus.Channel(), bus.StatusText())
		}
		fmt.Println(bus.Channel(), "reset")
		return nil
	},
}

var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "flash the channel LED to find the adapter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _ := cmd.Flags().GetDuration(flagDuration)
		bus, err := openBus(cmd)
		if err != nil {
			return err
		}
		defer bus.Shutdown()
		bus.Flash(true)
		defer bus.Flash(false)
		select {
		case <-cmd.Context().Done():
		case <-time.After(d):
		}
		return nil
	},
}
