package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mlsorensen/goshark"
	// This tells the Go compiler to include the package, which runs its init()
	// function. The init() function, in turn, calls goshark.Register(). You can
	// specify specific coolers individually or just "all"
	_ "github.com/mlsorensen/goshark/pkg/coolers/all"
)

func main() {
	a := app.New()
	w := a.NewWindow("Cooler App")

	var dev *goshark.FoundDevice
	if len(os.Args) > 1 && os.Args[1] == "-mock" {
		dev = &goshark.FoundDevice{Name: "MOCK-UI"}
	} else {
		var err error
		dev, err = goshark.ScanForOne(10 * time.Second)
		if err != nil {
			log.Fatal(err)
		}
	}
	myCooler, err := goshark.NewCoolerForDevice(dev)
	if err != nil {
		log.Fatalf("Fatal: Could not create cooler instance: %v", err)
	}

	displayNameLabel := widget.NewLabel(myCooler.DisplayName())
	fanLabel := widget.NewLabel("Fan: -")
	tempLabel := widget.NewLabel("Phone: - Heatsink: -")

	fanSlider := widget.NewSlider(0, 100)
	fanSlider.Step = 5
	fanSlider.OnChangeEnded = func(v float64) {
		if err := myCooler.SetFanSpeed(int(v)); err != nil {
			log.Printf("Error setting fan speed: %v", err)
		}
	}

	coolingSlider := widget.NewSlider(0, 100)
	coolingSlider.Step = 5
	coolingSlider.OnChangeEnded = func(v float64) {
		if err := myCooler.SetCoolingPower(int(v)); err != nil {
			log.Printf("Error setting cooling power: %v", err)
		}
	}

	brightness := widget.NewSlider(0, 100)
	brightness.SetValue(60)

	smartButton := widget.NewButton("Smart mode", func() {
		if err := myCooler.EnableSmartMode(); err != nil {
			log.Printf("Error enabling smart mode: %v", err)
		}
	})
	offButton := widget.NewButton("Off", func() {
		if err := myCooler.TurnCoolingOff(); err != nil {
			log.Printf("Error turning cooler off: %v", err)
		}
	})
	ledButton := widget.NewButton("LED colour", func() {
		picker := dialog.NewColorPicker("LED colour", "Pick a colour", func(c color.Color) {
			r, g, b, _ := c.RGBA()
			if err := myCooler.SetLEDColor(int(r>>8), int(g>>8), int(b>>8), int(brightness.Value)); err != nil {
				log.Printf("Error setting LED colour: %v", err)
			}
		}, w)
		picker.Advanced = true
		picker.Show()
	})
	ledOffButton := widget.NewButton("LED off", func() {
		if err := myCooler.TurnOffLED(); err != nil {
			log.Printf("Error turning LED off: %v", err)
		}
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Println("Shutdown signal received:", sig)
		fyne.Do(a.Quit)
	}()

	go func() {
		updates, err := myCooler.Connect()
		if err != nil {
			log.Fatalf("Fatal: Could not connect to cooler: %v", err)
		}
		for update := range updates {
			if update.Error != nil {
				log.Printf("Error received on update channel: %v", update.Error)
				continue
			}
			u := update
			fyne.Do(func() {
				if u.HasFanSpeed {
					fanLabel.SetText(fmt.Sprintf("Fan: %d%%", u.FanSpeed))
				}
				if u.HasTemperature {
					tempLabel.SetText(fmt.Sprintf("Phone: %d°C Heatsink: %d°C", u.PhoneTemperature, u.HeatsinkTemperature))
				}
			})
		}
	}()

	w.SetContent(container.NewVBox(
		displayNameLabel,
		fanLabel,
		tempLabel,
		widget.NewLabel("Fan speed"),
		fanSlider,
		widget.NewLabel("Cooling power"),
		coolingSlider,
		container.NewHBox(smartButton, offButton),
		widget.NewLabel("LED brightness"),
		brightness,
		container.NewHBox(ledButton, ledOffButton),
	))
	w.ShowAndRun()

	if err := myCooler.Disconnect(); err != nil {
		log.Printf("Error disconnecting from cooler: %v", err)
	}
}
