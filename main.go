package main

import (
	"log"
	"os"

	"ssbradio/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/platforms/raspi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	radioConfig, err := radio.LoadConfig("si4735.yaml")
	if err != nil {
		log.Fatalln(err)
	}
	radioConfig.Log = log.Printf
	if radioConfig.DebugMode {
		radioConfig.DebugLog = log.Printf
	}
	radioConfig.OnPatchProgress = func(line, total int) {
		if line == total || line%500 == 0 {
			log.Printf("patch: %d/%d lines\n", line, total)
		}
	}

	// SI4735_BACKEND selects how the chip is reached:
	// gobot (default), periph or cdev.
	switch backend := os.Getenv("SI4735_BACKEND"); backend {
	case "", "gobot":
		runRobot(radioConfig)
	case "periph", "cdev":
		runDirect(backend, radioConfig)
	default:
		log.Fatalf("unknown backend %q\n", backend)
	}
}

func runRobot(radioConfig radio.Si4735Config) {
	adaptor := raspi.NewAdaptor()

	rdio, err := radio.NewSi4735Driver(adaptor, radioConfig)
	if err != nil {
		log.Fatalln(err)
	}

	work := func() {
		log.Printf("receiver is %s\n", rdio.State())
	}

	robot := gobot.NewRobot("SSB receiver demo",
		[]gobot.Connection{adaptor},
		[]gobot.Device{rdio},
		work,
	)

	if err = robot.Start(); err != nil {
		log.Fatalln(err)
	}
}

func runDirect(backend string, radioConfig radio.Si4735Config) {
	addr := radioConfig.Address
	if addr == 0 {
		addr = radio.Address
	}
	bus, err := radio.OpenPeriphBus(os.Getenv("SI4735_I2C_BUS"), uint16(addr))
	if err != nil {
		log.Fatalln(err)
	}
	defer bus.Close()

	var pins radio.Pins = radio.PeriphPins{}
	if backend == "cdev" {
		cdev := radio.NewCdevPins("gpiochip0")
		defer cdev.Close()
		pins = cdev
	}

	rdio, err := radio.NewSi4735(bus, pins, radioConfig)
	if err != nil {
		log.Fatalln(err)
	}

	if err = rdio.Reset(); err != nil {
		log.Fatalln(err)
	}
	if err = rdio.PowerUp(radioConfig.PowerUp); err != nil {
		log.Fatalln(err)
	}
	if rdio.State() == radio.PatchMode && radioConfig.Patch != nil {
		if err = rdio.TransferPatch(radioConfig.Patch); err != nil {
			log.Fatalln(err)
		}
	}
	if err = rdio.Resume(); err != nil {
		log.Fatalln(err)
	}

	rev, err := rdio.Revision()
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("%v\n", rev)

	if err = rdio.PowerDown(); err != nil {
		log.Fatalln(err)
	}
}
