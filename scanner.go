package goshark

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"
)

// FoundDevice describes an advertising peripheral that a driver can handle.
type FoundDevice struct {
	Name    string
	ID      string
	Address bluetooth.Address
	RSSI    int

	// ManufacturerData is the raw manufacturer specific advertisement data,
	// company id first (little-endian), one entry per advertised element.
	ManufacturerData [][]byte
}

// ErrNoDeviceFound is returned by ScanForOne when the scan times out.
var ErrNoDeviceFound = errors.New("no supported cooler found")

// ScanStream returns a channel that streams FoundDevice as they are discovered
// and stops scanning when the context is canceled. Each address is reported once.
// Devices are matched against the registered drivers, or against the given
// name prefixes when any are supplied.
func ScanStream(ctx context.Context, customPrefixes ...string) (<-chan FoundDevice, error) {
	if err := TryEnableAdapter(); err != nil {
		return nil, err
	}

	log := logging.Named("scanner")
	deviceChan := make(chan FoundDevice)

	go func() {
		defer close(deviceChan)

		mu := sync.Mutex{}
		seen := make(map[string]bool)

		log.Info("starting BLE scan", zap.Strings("drivers", Registered()), zap.Strings("prefixes", customPrefixes))

		handler := func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			device := foundDeviceFromResult(result)
			if !matches(&device, customPrefixes) {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if seen[device.ID] {
				return
			}
			seen[device.ID] = true

			select {
			case deviceChan <- device:
			case <-ctx.Done():
			}
		}

		scanErr := make(chan error, 1)
		go func() {
			scanErr <- BTAdapter.Scan(handler)
		}()

		select {
		case err := <-scanErr:
			if err != nil {
				log.Error("error starting scan", zap.Error(err))
			}
			return
		case <-ctx.Done():
		}

		if err := BTAdapter.StopScan(); err != nil {
			log.Warn("error stopping scan", zap.Error(err))
		}
		<-scanErr
	}()

	return deviceChan, nil
}

// Scan finds supported coolers, blocking for duration.
func Scan(duration time.Duration, customPrefixes ...string) ([]FoundDevice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	if len(customPrefixes) == 0 && len(Registered()) == 0 {
		return nil, errors.New("scan: no implementations registered and no custom prefixes provided")
	}

	devices, err := ScanStream(ctx, customPrefixes...)
	if err != nil {
		return nil, err
	}

	var results []FoundDevice
	for device := range devices {
		logging.Named("scanner").Info("found a match", zap.String("name", device.Name), zap.String("id", device.ID), zap.Int("rssi", device.RSSI))
		results = append(results, device)
	}

	logging.Named("scanner").Info("scan finished", zap.Int("devices", len(results)))
	return results, nil
}

// ScanForOne returns the first supported cooler seen within duration.
func ScanForOne(duration time.Duration, customPrefixes ...string) (*FoundDevice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	devices, err := ScanStream(ctx, customPrefixes...)
	if err != nil {
		return nil, err
	}

	device, ok := <-devices
	if !ok {
		return nil, ErrNoDeviceFound
	}
	cancel()
	// drain so the scan goroutine can exit
	for range devices {
	}
	return &device, nil
}

func foundDeviceFromResult(result bluetooth.ScanResult) FoundDevice {
	return FoundDevice{
		Name:             result.LocalName(),
		ID:               result.Address.String(),
		Address:          result.Address,
		RSSI:             int(result.RSSI),
		ManufacturerData: manufacturerData(result.ManufacturerData()),
	}
}

// manufacturerData restores the company ID prefix that the scan result splits off.
func manufacturerData(elements []bluetooth.ManufacturerDataElement) [][]byte {
	var out [][]byte
	for _, element := range elements {
		out = append(out, comms.ManufacturerDataBytes(element.CompanyID, element.Data))
	}
	return out
}

// matches checks a device against the custom prefixes if given, otherwise
// against the registered drivers.
func matches(device *FoundDevice, customPrefixes []string) bool {
	if len(customPrefixes) == 0 {
		return IsSupported(device)
	}
	if device.Name == "" {
		return false
	}
	for _, prefix := range customPrefixes {
		if strings.HasPrefix(device.Name, prefix) {
			return true
		}
	}
	return false
}
