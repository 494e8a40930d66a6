package main

import (
	"fmt"
	"log"
	"time"

	"github.com/mlsorensen/goshark"
	_ "github.com/mlsorensen/goshark/pkg/coolers/all"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
	"github.com/mlsorensen/goshark/pkg/logging"
)

func main() {
	if err := logging.Initialize("info", "console"); err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	defer logging.Sync()

	log.Println("--- GoShark Scanner Test ---")

	scanDuration := 15 * time.Second
	log.Printf("Starting BLE scan for %s...", scanDuration)
	log.Println("Turn on your cooler now.")

	// Scan blocks for the given duration. Without prefixes it matches devices
	// through the registered drivers, e.g. by the Black Shark manufacturer data.
	devices, err := goshark.Scan(scanDuration)
	if err != nil {
		log.Fatalf("Fatal: Scan failed: %v", err)
	}

	if len(devices) == 0 {
		log.Println("\nScan complete. No supported devices found.")
		log.Println("Tip: Make sure your cooler is powered and not connected to your phone.")
		return
	}

	fmt.Println("\n--- Found Supported Devices ---")
	for i, device := range devices {
		fmt.Printf("%d: Name: %s\n", i+1, device.Name)
		fmt.Printf("   ID:   %s\n", device.ID)
		fmt.Printf("   RSSI: %d\n", device.RSSI)
		for _, md := range device.ManufacturerData {
			fmt.Printf("   Data: %s\n", comms.Hex(md))
		}
		fmt.Println()
	}
	fmt.Println("-----------------------------")
}
