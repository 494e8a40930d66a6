package goshark

import (
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

// BTAdapter is the bluetooth adapter shared by the scanner and the drivers.
var BTAdapter = bluetooth.DefaultAdapter

var (
	adapterLock    sync.Mutex
	adapterEnabled bool
)

// TryEnableAdapter enables BTAdapter once. Failed attempts are retried on the next call.
func TryEnableAdapter() error {
	adapterLock.Lock()
	defer adapterLock.Unlock()

	if adapterEnabled {
		return nil
	}
	if err := BTAdapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w", err)
	}
	adapterEnabled = true
	return nil
}
