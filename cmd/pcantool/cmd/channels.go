package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/roffe/pcanbus/pkg/pcan"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(channelsCmd)
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "list channel names and the driver version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loopback, _ := cmd.Flags().GetBool(flagLoopback)
		dev, err := openDevice(loopback)
		if err != nil {
			return err
		}
		if d, ok := dev.(pcan.Describer); ok {
			if v, err := d.APIVersion(); err == nil {
				fmt.Println("PCAN-Basic API", color.GreenString(v))
			}
		}
		for _, name := range pcan.ChannelNames() {
			h, _ := pcan.LookupChannel(name)
			fmt.Printf("%-14s 0x%02X\n", name, uint16(h))
		}
		return nil
	},
}
