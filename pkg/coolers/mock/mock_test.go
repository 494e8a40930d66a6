package mock

import (
	"testing"
	"time"

	"github.com/mlsorensen/goshark"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnected(t *testing.T) (*MockCooler, <-chan goshark.CoolerUpdate) {
	t.Helper()
	c := New(&goshark.FoundDevice{Name: "MOCK-Test"}).(*MockCooler)
	c.tick = time.Hour // keep the simulation quiet, tests drive it
	updates, err := c.Connect()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Disconnect() })
	return c, updates
}

func next(t *testing.T, updates <-chan goshark.CoolerUpdate) goshark.CoolerUpdate {
	t.Helper()
	select {
	case u, ok := <-updates:
		require.True(t, ok, "update channel closed")
		return u
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
	return goshark.CoolerUpdate{}
}

func TestFramesDecode(t *testing.T) {
	fan := comms.DecodeNotification(FanStatusFrame(30))
	require.IsType(t, comms.FanState{}, fan)
	assert.Equal(t, 70, fan.(comms.FanState).Speed)

	cooling := comms.DecodeNotification(CoolingStatusFrame(-12, 10))
	require.IsType(t, comms.CoolingState{}, cooling)
	assert.Equal(t, int8(-12), cooling.(comms.CoolingState).PhoneTemperature)
	assert.Equal(t, int8(10), cooling.(comms.CoolingState).HeatsinkTemperature)

	assert.Len(t, FanStatusFrame(0), 8)
	assert.Equal(t, byte(0x88), FanStatusFrame(0)[0])
}

func TestRegisteredByName(t *testing.T) {
	c, err := goshark.NewCoolerForDevice(&goshark.FoundDevice{Name: "MOCK-Development-Cooler"})
	require.NoError(t, err)
	assert.Equal(t, "Mock Cooler", c.DisplayName())
}

func TestMetadataRequestProducesTemperatures(t *testing.T) {
	c, updates := newConnected(t)

	require.NoError(t, c.RequestCoolingMetadata())
	u := next(t, updates)
	assert.True(t, u.HasTemperature)
	assert.Equal(t, int8(38), u.PhoneTemperature)
	assert.Equal(t, int8(30), u.HeatsinkTemperature)
}

func TestFanSpeedRoundTrip(t *testing.T) {
	c, updates := newConnected(t)

	require.NoError(t, c.SetFanSpeed(70))
	c.notify(FanStatusFrame(c.currentFanLoad()))
	u := next(t, updates)
	assert.True(t, u.HasFanSpeed)
	assert.Equal(t, 70, u.FanSpeed)

	require.NoError(t, c.SetFanSpeed(0))
	c.notify(FanStatusFrame(c.currentFanLoad()))
	assert.Equal(t, 0, next(t, updates).FanSpeed)
	assert.Equal(t, comms.LoadOff, c.coolingLoad, "0% turns cooling off too")
}

func TestSmartModeAndOff(t *testing.T) {
	c, _ := newConnected(t)

	require.NoError(t, c.EnableSmartMode())
	assert.Equal(t, comms.LoadSmart, c.fanLoad)
	assert.Equal(t, byte(smartLoad), c.currentFanLoad())

	require.NoError(t, c.SetCoolingPower(80))
	assert.Equal(t, byte(20), c.coolingLoad)

	require.NoError(t, c.TurnCoolingOff())
	assert.Equal(t, comms.LoadOff, c.fanLoad)
	assert.Equal(t, comms.LoadOff, c.coolingLoad)
}

func TestFanSpeedKeepsExplicitCooling(t *testing.T) {
	c, _ := newConnected(t)

	// 60% cooling is the same load smart mode uses
	require.NoError(t, c.SetCoolingPower(60))
	require.NoError(t, c.SetFanSpeed(50))
	assert.Equal(t, byte(50), c.fanLoad)
	assert.Equal(t, byte(40), c.coolingLoad)
}

func TestFanSpeedLeavesSmartMode(t *testing.T) {
	c, _ := newConnected(t)

	require.NoError(t, c.EnableSmartMode())
	assert.Equal(t, byte(smartLoad), c.coolingLoad)

	require.NoError(t, c.SetFanSpeed(70))
	assert.Equal(t, byte(30), c.fanLoad)
	assert.Equal(t, byte(30), c.coolingLoad, "cooling follows the fan out of smart mode")

	require.NoError(t, c.SetFanSpeed(20))
	assert.Equal(t, byte(30), c.coolingLoad, "only the first fan command after smart mode moves cooling")
}

func TestLED(t *testing.T) {
	c, _ := newConnected(t)

	require.NoError(t, c.SetLEDColor(255, 0, 100, 50))
	assert.Equal(t, LEDState{On: true, R: 128, G: 0, B: 50}, c.LED())

	require.NoError(t, c.TurnOffLED())
	assert.Equal(t, LEDState{}, c.LED())
}

func TestInvalidParametersNeverReachDevice(t *testing.T) {
	c, _ := newConnected(t)

	assert.ErrorIs(t, c.SetFanSpeed(101), comms.ErrInvalidParameter)
	assert.ErrorIs(t, c.SetLEDColor(0, 0, 0, 200), comms.ErrInvalidParameter)
	assert.Equal(t, comms.LoadOff, c.fanLoad)
}

func TestWriteRejectsUnknownCommands(t *testing.T) {
	c, _ := newConnected(t)
	assert.Error(t, c.Write([]byte{0x05, 0x09, 0x00, 0x00, 0x00}))
	assert.Error(t, c.Write([]byte{0x01}))
}

func TestDisconnect(t *testing.T) {
	c, updates := newConnected(t)

	require.NoError(t, c.Disconnect())
	assert.False(t, c.IsConnected())
	_, ok := <-updates
	assert.False(t, ok)

	assert.Error(t, c.TurnCoolingOff())
	assert.NoError(t, c.Disconnect())
}

func TestStepCoolsTowardTarget(t *testing.T) {
	c := New(&goshark.FoundDevice{Name: "MOCK"}).(*MockCooler)
	c.coolingLoad = 0 // full power
	for i := 0; i < 100; i++ {
		c.step()
	}
	assert.Less(t, c.heatsink, ambient-15)
}
