package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlsorensen/goshark"

	// This tells the Go compiler to include the package, which runs its init()
	// function. The init() function, in turn, calls goshark.Register(). You can
	// specify specific coolers individually or just "all"
	_ "github.com/mlsorensen/goshark/pkg/coolers/all"
)

func main() {
	log.Println("GoShark CLI Application Starting...")

	// The mock registers for device names starting with "MOCK". A real program
	// would scan for coolers and use the FoundDevice it returns.
	device := &goshark.FoundDevice{Name: "MOCK-Development-Cooler"}
	log.Printf("Attempting to create cooler instance for device: %v", device.Name)

	myCooler, err := goshark.NewCoolerForDevice(device)
	if err != nil {
		log.Fatalf("Fatal: Could not create cooler instance: %v", err)
	}
	log.Println("Successfully created mock cooler instance.")

	// --- Set up graceful shutdown ---
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Println("Shutdown signal received. Disconnecting...")
		_ = myCooler.Disconnect()
	}()

	updates, err := myCooler.Connect()
	if err != nil {
		_ = myCooler.Disconnect()
		log.Fatalf("Fatal: Could not connect to cooler: %v", err)
	}
	log.Println("Connection successful. Listening for updates...")

	// Cycle through the cooler's modes in the background while the main
	// goroutine prints updates.
	go func() {
		for _, speed := range []int{30, 70, 100} {
			time.Sleep(5 * time.Second)
			log.Printf("--> Setting fan speed to %d%%...", speed)
			if err := myCooler.SetFanSpeed(speed); err != nil {
				log.Printf("Error setting fan speed: %v", err)
			}
			if err := myCooler.RequestCoolingMetadata(); err != nil {
				log.Printf("Error requesting metadata: %v", err)
			}
		}

		time.Sleep(5 * time.Second)
		log.Println("--> Enabling smart mode and a blue LED...")
		_ = myCooler.EnableSmartMode()
		_ = myCooler.SetLEDColor(0, 0, 255, 80)

		time.Sleep(5 * time.Second)
		log.Println("--> Turning everything off...")
		_ = myCooler.TurnOffLED()
		_ = myCooler.TurnCoolingOff()
	}()

	// The loop exits when the channel is closed on disconnect.
	for update := range updates {
		switch {
		case update.Error != nil:
			log.Printf("Error received on update channel: %v", update.Error)
		case update.HasFanSpeed:
			log.Printf("Fan: %d%%", update.FanSpeed)
		case update.HasTemperature:
			log.Printf("Phone: %d°C Heatsink: %d°C", update.PhoneTemperature, update.HeatsinkTemperature)
		}
	}

	log.Println("Update channel closed. Connection terminated.")
	log.Println("Application finished gracefully.")
}
