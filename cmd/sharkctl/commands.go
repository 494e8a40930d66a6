package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mlsorensen/goshark"
	_ "github.com/mlsorensen/goshark/pkg/coolers/all"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/mlsorensen/goshark/pkg/logging"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby supported coolers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Scanning for %s...\n", cfg.BLE.ScanTimeout)
		devices, err := goshark.Scan(cfg.BLE.ScanTimeout, prefixes()...)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No supported devices found.")
			return nil
		}
		for i, device := range devices {
			fmt.Printf("%d: Name: %s\n", i+1, device.Name)
			fmt.Printf("   ID:   %s\n", device.ID)
			fmt.Printf("   RSSI: %d\n", device.RSSI)
			for _, md := range device.ManufacturerData {
				fmt.Printf("   Data: %s\n", comms.Hex(md))
			}
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream fan and temperature readings until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cooler, updates, err := connect()
		if err != nil {
			return err
		}
		defer func() { _ = cooler.Disconnect() }()

		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigchan)

		for {
			select {
			case <-sigchan:
				return nil
			case update, ok := <-updates:
				if !ok {
					return nil
				}
				printUpdate(update)
			}
		}
	},
}

var fanCmd = &cobra.Command{
	Use:   "fan <percent>",
	Short: "Set the fan speed (0 turns the cooler off)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseInts(args)
		if err != nil {
			return err
		}
		return withCooler(func(c goshark.Cooler) error { return c.SetFanSpeed(p[0]) })
	},
}

var coolingCmd = &cobra.Command{
	Use:   "cooling <percent>",
	Short: "Set the cooling power (0 turns the cooler off)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseInts(args)
		if err != nil {
			return err
		}
		return withCooler(func(c goshark.Cooler) error { return c.SetCoolingPower(p[0]) })
	},
}

var smartCmd = &cobra.Command{
	Use:   "smart",
	Short: "Enable smart mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCooler(goshark.Cooler.EnableSmartMode)
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn fan and cooling off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCooler(goshark.Cooler.TurnCoolingOff)
	},
}

var ledCmd = &cobra.Command{
	Use:   "led <red> <green> <blue> [brightness]",
	Short: "Set the LED colour",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := ledArgs(args)
		if err != nil {
			return err
		}
		return withCooler(func(c goshark.Cooler) error { return c.SetLEDColor(v[0], v[1], v[2], v[3]) })
	},
}

var ledOffCmd = &cobra.Command{
	Use:   "led-off",
	Short: "Turn the LED off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCooler(goshark.Cooler.TurnOffLED)
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Request and print the current temperatures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cooler, updates, err := connect()
		if err != nil {
			return err
		}
		defer func() { _ = cooler.Disconnect() }()

		if err := cooler.RequestCoolingMetadata(); err != nil {
			return err
		}
		timeout := time.After(5 * time.Second)
		for {
			select {
			case <-timeout:
				return fmt.Errorf("no temperature reported within 5s")
			case update, ok := <-updates:
				if !ok {
					return fmt.Errorf("connection closed")
				}
				if update.Error != nil {
					return update.Error
				}
				if update.HasTemperature {
					printUpdate(update)
					return nil
				}
			}
		}
	},
}

func ledArgs(args []string) ([]int, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	if len(v) == 3 {
		v = append(v, cfg.LED.Brightness)
	}
	return v, nil
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		values[i] = v
	}
	return values, nil
}

func prefixes() []string {
	if cfg.BLE.NamePrefix == "" {
		return nil
	}
	return []string{cfg.BLE.NamePrefix}
}

// findDevice returns the mock, the configured address, or the first supported cooler.
func findDevice() (*goshark.FoundDevice, error) {
	if useMock {
		return &goshark.FoundDevice{Name: "MOCK-sharkctl"}, nil
	}
	if cfg.BLE.Address == "" {
		return goshark.ScanForOne(cfg.BLE.ScanTimeout, prefixes()...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BLE.ScanTimeout)
	defer cancel()
	devices, err := goshark.ScanStream(ctx, prefixes()...)
	if err != nil {
		return nil, err
	}
	var found *goshark.FoundDevice
	for device := range devices {
		if found == nil && strings.EqualFold(device.ID, cfg.BLE.Address) {
			d := device
			found = &d
			cancel()
		}
	}
	if found == nil {
		return nil, fmt.Errorf("device %s not found: %w", cfg.BLE.Address, goshark.ErrNoDeviceFound)
	}
	return found, nil
}

func connect() (goshark.Cooler, <-chan goshark.CoolerUpdate, error) {
	device, err := findDevice()
	if err != nil {
		return nil, nil, err
	}
	cooler, err := goshark.NewCoolerForDevice(device)
	if err != nil {
		return nil, nil, err
	}
	if bs, ok := cooler.(*blackshark.Cooler); ok {
		bs.SetPollInterval(cfg.BLE.PollInterval)
	}

	logging.Named("sharkctl").Info("connecting", zap.String("device", device.Name), zap.String("id", device.ID))
	updates, err := cooler.Connect()
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to %s: %w", device.Name, err)
	}
	return cooler, updates, nil
}

func withCooler(fn func(goshark.Cooler) error) error {
	cooler, _, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = cooler.Disconnect() }()
	return fn(cooler)
}

func printUpdate(u goshark.CoolerUpdate) {
	switch {
	case u.Error != nil:
		fmt.Printf("error: %v\n", u.Error)
	case u.HasFanSpeed:
		fmt.Printf("fan      %3d%%\n", u.FanSpeed)
	case u.HasTemperature:
		fmt.Printf("phone    %3d°C  heatsink %3d°C\n", u.PhoneTemperature, u.HeatsinkTemperature)
	default:
		fmt.Printf("unknown  %s\n", comms.Hex(u.Raw))
	}
}
