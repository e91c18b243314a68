package radio_test

import (
	"log"

	"ssbradio/patch"
	"ssbradio/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/platforms/raspi"
)

func ExampleSi4735Driver() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	img, err := patch.FromFile("patch_ssb_compressed.h")
	if err != nil {
		log.Fatalln(err)
	}

	adaptor := raspi.NewAdaptor()

	radioConfig := radio.Si4735Config{
		ResetPin: "12",
		MutePin:  "16",
		PowerUp: radio.PowerUpConfig{
			Patch:    true,
			Clock:    radio.CrystalOscillator,
			Function: radio.AMReceive,
		},
		Patch:     img,
		DebugMode: false,
		Log:       log.Printf,
		DebugLog:  nil,
	}
	rdio, err := radio.NewSi4735Driver(adaptor, radioConfig)
	if err != nil {
		log.Fatalln(err)
	}

	work := func() {
		rev, err := rdio.Revision()
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("%v\n", rev)
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

func ExampleSi4735Driver_TransferPatch() {
	bus, err := radio.OpenPeriphBus("", radio.Address)
	if err != nil {
		log.Fatalln(err)
	}
	defer bus.Close()

	pins := radio.NewCdevPins("gpiochip0")
	defer pins.Close()

	rdio, err := radio.NewSi4735(bus, pins, radio.Si4735Config{
		ResetPin:          "12",
		HandshakeTransfer: true,
		Log:               log.Printf,
	})
	if err != nil {
		log.Fatalln(err)
	}

	img, err := patch.FromFile("patch_full.h")
	if err != nil {
		log.Fatalln(err)
	}

	// the patch is lost at every power down, so every power up sends it again
	for attempt := 0; attempt < 3; attempt++ {
		if err = rdio.Reset(); err != nil {
			log.Fatalln(err)
		}
		if err = rdio.PowerUp(radio.PowerUpConfig{Patch: true, Clock: radio.CrystalOscillator}); err != nil {
			log.Fatalln(err)
		}
		if err = rdio.TransferPatch(img); err == nil {
			break
		}
		log.Printf("patch transfer failed, power cycling: %v\n", err)
	}
	if err != nil {
		log.Fatalln(err)
	}

	if err = rdio.Resume(); err != nil {
		log.Fatalln(err)
	}
	defer rdio.PowerDown()
}
