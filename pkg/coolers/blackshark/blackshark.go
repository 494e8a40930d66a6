// Package blackshark drives the Black Shark magnetic phone cooler over BLE.
package blackshark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlsorensen/goshark"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"
)

func init() {
	goshark.Register("blackshark", MatchDevice, New)
}

// DefaultPollInterval is how often the cooling metadata is requested while connected.
const DefaultPollInterval = 2 * time.Second

// linkTimeoutPolls is how many poll intervals may pass without a notification
// before the link is considered lost.
const linkTimeoutPolls = 3

var (
	// ErrNotConnected is returned by commands issued before Connect.
	ErrNotConnected = errors.New("cooler is not connected")
	// ErrConnectionLost is sent on the update channel before it is closed
	// because the device stopped answering.
	ErrConnectionLost = errors.New("connection to cooler lost")
)

// This line is the compile-time check. It will fail to compile if
// *Cooler ever stops satisfying the goshark.Cooler interface.
var _ goshark.Cooler = (*Cooler)(nil)

var features = goshark.CoolerFeatures{
	FanSpeed:     true,
	CoolingPower: true,
	SmartMode:    true,
	LED:          true,
	Temperature:  true,
}

type Cooler struct {
	name         string
	address      bluetooth.Address
	pollInterval time.Duration
	log          *zap.Logger

	mu             sync.Mutex
	connected      bool
	disconnectCtx  context.Context
	disconnectFunc context.CancelFunc

	btDevice     bluetooth.Device
	writeChar    bluetooth.DeviceCharacteristic
	readChar     bluetooth.DeviceCharacteristic
	link         link
	lastNotified time.Time

	updates chan goshark.CoolerUpdate
	state   goshark.CoolerUpdate
}

// link is the connected peripheral as the driver uses it once the
// characteristics are known.
type link interface {
	write(cmd []byte) error
	disconnect() error
}

type bleLink struct {
	device    bluetooth.Device
	writeChar bluetooth.DeviceCharacteristic
}

func (l bleLink) write(cmd []byte) error {
	// Write is only implemented by some backends
	_, err := l.writeChar.WriteWithoutResponse(cmd)
	return err
}

func (l bleLink) disconnect() error {
	return l.device.Disconnect()
}

// MatchDevice recognizes the cooler by its manufacturer data prefix.
func MatchDevice(device *goshark.FoundDevice) bool {
	if device == nil {
		return false
	}
	for _, data := range device.ManufacturerData {
		if comms.MatchesManufacturerData(data) {
			return true
		}
	}
	return false
}

func New(device *goshark.FoundDevice) goshark.Cooler {
	return &Cooler{
		name:         device.Name,
		address:      device.Address,
		pollInterval: DefaultPollInterval,
		log:          logging.Named("blackshark").With(zap.String("device", device.ID)),
	}
}

// SetPollInterval changes how often temperatures are requested. Zero disables
// polling, and with it the detection of a silent link. It takes effect on the
// next Connect.
func (c *Cooler) SetPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollInterval = d
}

func (c *Cooler) GetFeatures() goshark.CoolerFeatures {
	return features
}

func (c *Cooler) Connect() (<-chan goshark.CoolerUpdate, error) {
	err := goshark.TryEnableAdapter()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil, errors.New("cooler is already connected")
	}

	c.btDevice, err = goshark.BTAdapter.Connect(c.address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", c.address.String(), err)
	}

	if err = c.setupCharacteristics(); err != nil {
		_ = c.btDevice.Disconnect()
		return nil, err
	}

	c.log.Debug("setting up notifications")
	if err = c.readChar.EnableNotifications(c.handleNotification); err != nil {
		_ = c.btDevice.Disconnect()
		return nil, fmt.Errorf("failed to enable notifications: %w", err)
	}

	updates := c.attach(bleLink{device: c.btDevice, writeChar: c.writeChar})
	c.log.Info("connected")
	return updates, nil
}

// attach starts a session on an established link. Must be called with c.mu held.
func (c *Cooler) attach(l link) <-chan goshark.CoolerUpdate {
	c.link = l
	c.updates = make(chan goshark.CoolerUpdate, 20)
	c.state = goshark.CoolerUpdate{}
	c.lastNotified = time.Now()
	c.disconnectCtx, c.disconnectFunc = context.WithCancel(context.Background())
	c.connected = true

	if c.pollInterval > 0 {
		go c.pollMetadata(c.disconnectCtx, c.pollInterval)
		go c.monitorLink(c.disconnectCtx, c.pollInterval, linkTimeoutPolls*c.pollInterval)
	}
	return c.updates
}

func (c *Cooler) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	err := c.link.disconnect()
	c.teardown()
	c.log.Info("disconnected")
	return err
}

// teardown must be called with c.mu held.
func (c *Cooler) teardown() {
	c.disconnectFunc()
	close(c.updates)
	c.connected = false
}

func (c *Cooler) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Cooler) DeviceName() string {
	return c.name
}

func (c *Cooler) DisplayName() string {
	return "Black Shark cooler"
}

func (c *Cooler) SetFanSpeed(percentage int) error {
	cmd, err := comms.BuildSetFanSpeedCommand(percentage)
	if err != nil {
		return err
	}
	return c.write(cmd)
}

func (c *Cooler) SetCoolingPower(percentage int) error {
	cmd, err := comms.BuildSetCoolingPowerCommand(percentage)
	if err != nil {
		return err
	}
	return c.write(cmd)
}

func (c *Cooler) EnableSmartMode() error {
	return c.write(comms.BuildEnableSmartModeCommand())
}

func (c *Cooler) TurnCoolingOff() error {
	return c.write(comms.BuildTurnCoolingOffCommand())
}

func (c *Cooler) SetLEDColor(red, green, blue, brightness int) error {
	cmd, err := comms.BuildSetLEDColorCommand(red, green, blue, brightness)
	if err != nil {
		return err
	}
	return c.write(cmd)
}

func (c *Cooler) TurnOffLED() error {
	return c.write(comms.BuildTurnOffLEDCommand())
}

func (c *Cooler) RequestCoolingMetadata() error {
	return c.write(comms.BuildCoolingMetadataCommand())
}

func (c *Cooler) write(cmd []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	c.log.Debug("writing command", zap.String("cmd", comms.Hex(cmd)))
	if err := c.link.write(cmd); err != nil {
		return fmt.Errorf("error while writing command %s: %w", comms.Hex(cmd), err)
	}
	return nil
}

func (c *Cooler) pollMetadata(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.requestMetadata()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.requestMetadata()
		}
	}
}

func (c *Cooler) requestMetadata() {
	if err := c.RequestCoolingMetadata(); err != nil {
		c.log.Warn("metadata request failed", zap.Error(err))
		c.reportError(err)
	}
}

// monitorLink tears the session down once no notification has arrived for
// longer than timeout. The device answers every metadata request, so a quiet
// link while polling means it has gone away.
func (c *Cooler) monitorLink(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mu.Lock()
			silent := now.Sub(c.lastNotified)
			c.mu.Unlock()
			if silent > timeout {
				c.connectionLost(fmt.Errorf("%w: no notification for %s", ErrConnectionLost, silent.Round(time.Millisecond)))
				return
			}
		}
	}
}

// connectionLost publishes err as the final update and closes the session.
func (c *Cooler) connectionLost(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}

	c.log.Warn("connection lost", zap.Error(err))
	c.publish(FailedUpdate(c.state, err))
	if derr := c.link.disconnect(); derr != nil {
		c.log.Debug("disconnect after link loss failed", zap.Error(derr))
	}
	c.teardown()
}

// reportError sends err to the consumer without changing the known state.
func (c *Cooler) reportError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.publish(FailedUpdate(c.state, err))
}

// publish must be called with c.mu held.
func (c *Cooler) publish(update goshark.CoolerUpdate) {
	select {
	case c.updates <- update:
	default:
		c.log.Warn("update channel full, dropping update")
	}
}

func (c *Cooler) setupCharacteristics() error {
	c.log.Debug("discovering services")
	services, err := c.btDevice.DiscoverServices(nil)
	if err != nil {
		return fmt.Errorf("could not discover services: %w", err)
	}

	var foundRead, foundWrite bool
	for _, service := range services {
		chars, err := service.DiscoverCharacteristics([]bluetooth.UUID{
			comms.ReadCharUUID,
			comms.WriteCharUUID,
		})
		if err != nil {
			continue
		}

		for _, char := range chars {
			switch char.UUID() {
			case comms.ReadCharUUID:
				c.readChar = char
				foundRead = true
			case comms.WriteCharUUID:
				c.writeChar = char
				foundWrite = true
			}
		}
	}

	if !foundRead || !foundWrite {
		return fmt.Errorf("could not discover characteristics %s/%s", comms.Hex(comms.ReadCharacteristicID()), comms.Hex(comms.WriteCharacteristicID()))
	}

	c.log.Debug("successfully set up characteristics")
	return nil
}

func (c *Cooler) handleNotification(buf []byte) {
	msg := comms.DecodeNotification(buf)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}

	c.lastNotified = time.Now()
	if _, ok := msg.(comms.UnknownMessage); ok {
		c.log.Debug("unhandled notification", zap.String("raw", comms.Hex(buf)))
	}
	c.state = ApplyMessage(c.state, msg)
	c.publish(c.state)
}

// ApplyMessage folds a decoded message into the last known state.
func ApplyMessage(prev goshark.CoolerUpdate, msg comms.Message) goshark.CoolerUpdate {
	next := prev
	next.HasFanSpeed = false
	next.HasTemperature = false
	next.Error = nil
	next.Raw = msg.Raw()

	switch m := msg.(type) {
	case comms.FanState:
		next.FanSpeed = m.Speed
		next.HasFanSpeed = true
	case comms.CoolingState:
		next.PhoneTemperature = m.PhoneTemperature
		next.HeatsinkTemperature = m.HeatsinkTemperature
		next.HasTemperature = true
	case comms.UnknownMessage:
	}
	return next
}

// FailedUpdate reports err on top of the last known state. Nothing new was
// received, so both Has flags are cleared.
func FailedUpdate(prev goshark.CoolerUpdate, err error) goshark.CoolerUpdate {
	next := prev
	next.HasFanSpeed = false
	next.HasTemperature = false
	next.Raw = nil
	next.Error = err
	return next
}
