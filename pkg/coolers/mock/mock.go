// Package mock provides a simulated Black Shark cooler for development and
// testing when no hardware is around. Commands go through the real encoder and
// are interpreted the way the device would; readings are produced as raw
// notification frames and run through the real decoder.
package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mlsorensen/goshark"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
)

// This init function registers the mock with the central registry.
// Request it with a device named "MOCK...".
func init() {
	goshark.Register("mock", goshark.NamePrefixMatcher("MOCK"), New)
}

// This line is the compile-time check. It will fail to compile if
// *MockCooler ever stops satisfying the goshark.Cooler interface.
var _ goshark.Cooler = (*MockCooler)(nil)

var features = goshark.CoolerFeatures{
	FanSpeed:     true,
	CoolingPower: true,
	SmartMode:    true,
	LED:          true,
	Temperature:  true,
}

const (
	ambient   = 30.0 // degrees Celsius
	smartLoad = 40   // load reported while in smart mode
)

// LEDState is the last LED command the simulated device accepted.
type LEDState struct {
	On      bool
	R, G, B byte
}

// MockCooler is a simulated Bluetooth phone cooler.
type MockCooler struct {
	name string
	log  *zap.Logger

	mu           sync.Mutex
	connected    bool
	fanLoad      byte
	coolingLoad  byte
	smartCooling bool // coolingLoad was picked by smart mode, not by a cooling command
	led          LEDState
	phone        float64
	heatsink     float64

	tick       time.Duration
	disconnect context.CancelFunc
	updates    chan goshark.CoolerUpdate
	state      goshark.CoolerUpdate
}

// New creates a new, unconnected MockCooler that starts switched off.
func New(device *goshark.FoundDevice) goshark.Cooler {
	return &MockCooler{
		name:        device.Name,
		log:         logging.Named("mock"),
		fanLoad:     comms.LoadOff,
		coolingLoad: comms.LoadOff,
		phone:       38,
		heatsink:    ambient,
		tick:        750 * time.Millisecond,
	}
}

func (s *MockCooler) GetFeatures() goshark.CoolerFeatures {
	return features
}

func (s *MockCooler) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *MockCooler) DeviceName() string {
	return s.name
}

func (s *MockCooler) DisplayName() string {
	return "Mock Cooler"
}

// LED returns the simulated LED state.
func (s *MockCooler) LED() LEDState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led
}

// Connect starts the simulation.
func (s *MockCooler) Connect() (<-chan goshark.CoolerUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil, fmt.Errorf("mock cooler is already connected")
	}

	var ctx context.Context
	ctx, s.disconnect = context.WithCancel(context.Background())
	s.connected = true
	s.updates = make(chan goshark.CoolerUpdate, 20)
	s.state = goshark.CoolerUpdate{}

	go s.simulate(ctx, s.tick)

	s.log.Info("connected")
	return s.updates, nil
}

// simulate is the core loop that generates fake readings.
func (s *MockCooler) simulate(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.step()
			s.mu.Unlock()
			s.notify(FanStatusFrame(s.currentFanLoad()))

		case <-ctx.Done():
			return
		}
	}
}

// step moves the temperatures toward the target set by the cooling load.
// Must be called with s.mu held.
func (s *MockCooler) step() {
	power := loadToPercent(s.coolingLoad)
	target := ambient - float64(power)*0.25
	s.heatsink += (target-s.heatsink)*0.2 + (rand.Float64()-0.5)*0.3
	s.phone += (s.heatsink+8-s.phone)*0.1 + (rand.Float64()-0.5)*0.2
}

func (s *MockCooler) currentFanLoad() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.fanLoad {
	case comms.LoadOff:
		return 100
	case comms.LoadSmart:
		return smartLoad
	default:
		return s.fanLoad
	}
}

// notify decodes a device frame and pushes the result to the update channel.
func (s *MockCooler) notify(frame []byte) {
	msg := comms.DecodeNotification(frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	s.state = blackshark.ApplyMessage(s.state, msg)
	select {
	case s.updates <- s.state:
	default:
		s.log.Warn("update channel full, dropping update")
	}
}

// Disconnect stops the simulation.
func (s *MockCooler) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}
	s.disconnect()
	close(s.updates)
	s.connected = false
	s.log.Info("disconnected")
	return nil
}

func (s *MockCooler) SetFanSpeed(percentage int) error {
	cmd, err := comms.BuildSetFanSpeedCommand(percentage)
	if err != nil {
		return err
	}
	return s.Write(cmd)
}

func (s *MockCooler) SetCoolingPower(percentage int) error {
	cmd, err := comms.BuildSetCoolingPowerCommand(percentage)
	if err != nil {
		return err
	}
	return s.Write(cmd)
}

func (s *MockCooler) EnableSmartMode() error {
	return s.Write(comms.BuildEnableSmartModeCommand())
}

func (s *MockCooler) TurnCoolingOff() error {
	return s.Write(comms.BuildTurnCoolingOffCommand())
}

func (s *MockCooler) SetLEDColor(red, green, blue, brightness int) error {
	cmd, err := comms.BuildSetLEDColorCommand(red, green, blue, brightness)
	if err != nil {
		return err
	}
	return s.Write(cmd)
}

func (s *MockCooler) TurnOffLED() error {
	return s.Write(comms.BuildTurnOffLEDCommand())
}

func (s *MockCooler) RequestCoolingMetadata() error {
	return s.Write(comms.BuildCoolingMetadataCommand())
}

var errNotConnected = errors.New("mock cooler is not connected")

// Write hands a raw command buffer to the simulated device, as if it had been
// written to the write characteristic.
func (s *MockCooler) Write(cmd []byte) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return errNotConnected
	}
	s.log.Debug("received command", zap.String("cmd", comms.Hex(cmd)))

	var reply []byte
	switch {
	case len(cmd) == 5 && cmd[0] == 0x05:
		switch cmd[1] {
		case 0x02:
			s.applyLoad(cmd[4])
		case 0x05:
			if cmd[4] == comms.LoadOff {
				s.applyLoad(comms.LoadOff)
			} else {
				s.coolingLoad = cmd[4]
				s.smartCooling = false
			}
		case 0x06:
			reply = CoolingStatusFrame(int8(s.phone), int8(s.heatsink))
		default:
			s.mu.Unlock()
			return fmt.Errorf("mock cooler: unknown command %s", comms.Hex(cmd))
		}

	case len(cmd) == comms.LEDFrameLen && bytes.HasPrefix(cmd, []byte{0x2F, 0x01, 0x20, 0x00}):
		s.led = LEDState{On: cmd[4] != 0x01, R: cmd[11], G: cmd[12], B: cmd[13]}

	default:
		s.mu.Unlock()
		return fmt.Errorf("mock cooler: unknown command %s", comms.Hex(cmd))
	}
	s.mu.Unlock()

	if reply != nil {
		s.notify(reply)
	}
	return nil
}

// applyLoad handles the set-load command. Sentinels switch both fan and cooling.
// Must be called with s.mu held.
func (s *MockCooler) applyLoad(load byte) {
	switch load {
	case comms.LoadOff:
		s.fanLoad, s.coolingLoad = comms.LoadOff, comms.LoadOff
		s.smartCooling = false
	case comms.LoadSmart:
		s.fanLoad, s.coolingLoad = comms.LoadSmart, smartLoad
		s.smartCooling = true
	default:
		s.fanLoad = load
		if s.coolingLoad == comms.LoadOff || s.smartCooling {
			s.coolingLoad = load
		}
		s.smartCooling = false
	}
}

func loadToPercent(load byte) int {
	if load > 100 {
		return 0
	}
	return 100 - int(load)
}

// FanStatusFrame builds the notification the device sends for its fan load.
func FanStatusFrame(load byte) []byte {
	return frame(comms.OpcodeFan1, comms.OpcodeFan2, []byte{load, load, 0x00, 0x00})
}

// CoolingStatusFrame builds the notification the device sends in reply to a
// metadata request.
func CoolingStatusFrame(phone, heatsink int8) []byte {
	return frame(comms.OpcodeCooling1, comms.OpcodeCooling2, []byte{0x00, byte(phone), 0x00, byte(heatsink)})
}

func frame(op1, op2 byte, payload []byte) []byte {
	buf := make([]byte, 0, 4+len(payload))
	buf = append(buf, 0x80|byte(4+len(payload))&0x0F, op1, op2, 0x00)
	return append(buf, payload...)
}
