// Package goshark talks to Bluetooth phone coolers. Drivers for specific models
// live under pkg/coolers and register themselves with this package on import.
package goshark

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
)

// CoolerUpdate is a single reading from the cooler. Only the fields named by
// the Has* flags were reported in this update; the others carry the last
// known values. An error can be propagated through the channel as well.
type CoolerUpdate struct {
	FanSpeed            int  // percent, 0-100
	PhoneTemperature    int8 // degrees Celsius
	HeatsinkTemperature int8 // degrees Celsius

	HasFanSpeed    bool
	HasTemperature bool

	Raw   []byte // the notification this update was decoded from
	Error error
}

// CoolerFeatures advertises which controls a driver supports.
type CoolerFeatures struct {
	FanSpeed     bool
	CoolingPower bool
	SmartMode    bool
	LED          bool
	Temperature  bool
}

// Cooler is the generic interface for a Bluetooth phone cooler.
type Cooler interface {
	// Connect establishes a connection and returns a read-only channel of
	// updates. The channel is closed on disconnect.
	Connect() (<-chan CoolerUpdate, error)

	// Disconnect terminates the connection.
	Disconnect() error

	IsConnected() bool
	DeviceName() string
	DisplayName() string
	GetFeatures() CoolerFeatures

	// SetFanSpeed sets the fan to a percentage. 0 turns the cooler off.
	SetFanSpeed(percentage int) error

	// SetCoolingPower sets the cooling plate to a percentage. 0 turns the cooler off.
	SetCoolingPower(percentage int) error

	EnableSmartMode() error
	TurnCoolingOff() error

	// SetLEDColor sets the LED colour; channels are 0-255, brightness 0-100.
	SetLEDColor(red, green, blue, brightness int) error
	TurnOffLED() error

	// RequestCoolingMetadata asks the cooler to report its temperatures.
	RequestCoolingMetadata() error
}

// --- Implementation Registry ---

// Factory is a function that creates a new instance of a Cooler.
type Factory func(*FoundDevice) Cooler

// Matcher reports whether a discovered device is handled by a driver.
type Matcher func(*FoundDevice) bool

type registration struct {
	name    string
	match   Matcher
	factory Factory
}

var (
	registry = make(map[string]registration)
	regLock  = sync.RWMutex{}
)

// NamePrefixMatcher matches devices whose advertised name starts with prefix.
func NamePrefixMatcher(prefix string) Matcher {
	return func(d *FoundDevice) bool {
		return d != nil && strings.HasPrefix(d.Name, prefix)
	}
}

// Register makes a cooler implementation available. It should be called from
// the init() function of the implementation's package.
func Register(name string, match Matcher, factory Factory) {
	regLock.Lock()
	defer regLock.Unlock()

	if _, found := registry[name]; found {
		logging.Named("registry").Warn("cooler implementation is being overwritten", zap.String("name", name))
	}
	registry[name] = registration{name: name, match: match, factory: factory}
}

// Registered returns the names of all registered implementations, sorted.
func Registered() []string {
	regLock.RLock()
	defer regLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupported reports whether any registered implementation matches the device.
func IsSupported(device *FoundDevice) bool {
	_, ok := lookup(device)
	return ok
}

// NewCoolerForDevice finds the registered implementation matching the device
// and creates a new Cooler for it.
func NewCoolerForDevice(device *FoundDevice) (Cooler, error) {
	reg, ok := lookup(device)
	if !ok {
		name := ""
		if device != nil {
			name = device.Name
		}
		return nil, fmt.Errorf("no implementation found for device '%s'", name)
	}
	return reg.factory(device), nil
}

func lookup(device *FoundDevice) (registration, bool) {
	if device == nil {
		return registration{}, false
	}
	regLock.RLock()
	defer regLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reg := registry[name]
		if reg.match != nil && reg.match(device) {
			return reg, true
		}
	}
	return registration{}, false
}
