package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koscakluka/ema-dictation/core/audio/miniaudio"
)

var listCaptureDevices = miniaudio.CaptureDevices

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture devices",
	Long: `List the microphones miniaudio can capture from. Either column can be
used as audio.device; the default device is marked with *.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := listCaptureDevices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no capture devices found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, device := range devices {
			marker := " "
			if device.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", marker, device.ID, device.Name)
		}
		return w.Flush()
	},
}
