package goshark

import (
	"testing"

	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"
)

type stubCooler struct {
	Cooler
	name string
}

func (s *stubCooler) DeviceName() string { return s.name }

func registerStub(t *testing.T, name string, match Matcher) {
	t.Helper()
	Register(name, match, func(d *FoundDevice) Cooler { return &stubCooler{name: d.Name} })
	t.Cleanup(func() {
		regLock.Lock()
		delete(registry, name)
		regLock.Unlock()
	})
}

func TestNewCoolerForDevice(t *testing.T) {
	registerStub(t, "stub-a", NamePrefixMatcher("STUB-A"))
	registerStub(t, "stub-b", func(d *FoundDevice) bool {
		for _, md := range d.ManufacturerData {
			if len(md) >= 2 && md[0] == 0x8F && md[1] == 0x03 {
				return true
			}
		}
		return false
	})

	c, err := NewCoolerForDevice(&FoundDevice{Name: "STUB-A-1234"})
	require.NoError(t, err)
	assert.Equal(t, "STUB-A-1234", c.DeviceName())

	c, err = NewCoolerForDevice(&FoundDevice{Name: "", ManufacturerData: [][]byte{{0x8F, 0x03, 0x01}}})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewCoolerForDevice(&FoundDevice{Name: "Other"})
	assert.EqualError(t, err, "no implementation found for device 'Other'")

	_, err = NewCoolerForDevice(nil)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	registerStub(t, "zz-stub", NamePrefixMatcher("ZZ"))
	registerStub(t, "aa-stub", NamePrefixMatcher("AA"))

	names := Registered()
	assert.Contains(t, names, "zz-stub")
	assert.Contains(t, names, "aa-stub")
	assert.IsNonDecreasing(t, names)
}

func TestMatches(t *testing.T) {
	registerStub(t, "stub", NamePrefixMatcher("STUB"))

	assert.True(t, matches(&FoundDevice{Name: "STUB-1"}, nil))
	assert.False(t, matches(&FoundDevice{Name: "OTHER"}, nil))

	assert.True(t, matches(&FoundDevice{Name: "OTHER-1"}, []string{"OTHER"}))
	assert.False(t, matches(&FoundDevice{Name: "STUB-1"}, []string{"OTHER"}))
	assert.False(t, matches(&FoundDevice{Name: ""}, []string{""}))
}

func TestNamePrefixMatcher(t *testing.T) {
	m := NamePrefixMatcher("BS")
	assert.True(t, m(&FoundDevice{Name: "BS-Cooler"}))
	assert.False(t, m(&FoundDevice{Name: "Cooler"}))
	assert.False(t, m(nil))
}

func TestManufacturerData(t *testing.T) {
	got := manufacturerData([]bluetooth.ManufacturerDataElement{
		{CompanyID: 0x038F, Data: []byte{0x01, 0x02}},
		{CompanyID: 0x004C},
	})

	require.Len(t, got, 2)
	assert.Equal(t, []byte{0x8F, 0x03, 0x01, 0x02}, got[0])
	assert.True(t, comms.MatchesManufacturerData(got[0]))
	assert.Equal(t, []byte{0x4C, 0x00}, got[1])
	assert.Nil(t, manufacturerData(nil))
}
