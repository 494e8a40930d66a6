package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <command> [args...]",
	Short: "Print the bytes of a command without talking to a device",
	Long: `Print the raw bytes of a command.

Commands: off, smart, metadata, fan <percent>, cooling <percent>,
led <red> <green> <blue> [brightness], led-off`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := encodeCommand(args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Println(comms.Hex(buf))
		return nil
	},
}

func encodeCommand(name string, args []string) ([]byte, error) {
	want := map[string]int{"off": 0, "smart": 0, "metadata": 0, "led-off": 0, "fan": 1, "cooling": 1}
	if n, ok := want[name]; ok && len(args) != n {
		return nil, fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
	}

	switch name {
	case "off":
		return comms.BuildTurnCoolingOffCommand(), nil
	case "smart":
		return comms.BuildEnableSmartModeCommand(), nil
	case "metadata":
		return comms.BuildCoolingMetadataCommand(), nil
	case "led-off":
		return comms.BuildTurnOffLEDCommand(), nil
	case "fan", "cooling":
		v, err := parseInts(args)
		if err != nil {
			return nil, err
		}
		if name == "fan" {
			return comms.BuildSetFanSpeedCommand(v[0])
		}
		return comms.BuildSetCoolingPowerCommand(v[0])
	case "led":
		if len(args) < 3 || len(args) > 4 {
			return nil, fmt.Errorf("led takes 3 or 4 arguments, got %d", len(args))
		}
		v, err := ledArgs(args)
		if err != nil {
			return nil, err
		}
		return comms.BuildSetLEDColorCommand(v[0], v[1], v[2], v[3])
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}
