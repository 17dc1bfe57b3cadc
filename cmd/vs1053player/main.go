//go:build tinygo

package main

import (
	"fmt"
	"log"
	"machine"
	"os"
	"time"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs/fatfs"

	"github.com/elehobica/vs10xx_player/storage"
	"github.com/elehobica/vs10xx_player/vs1053"
)

var (
	spi      *machine.SPI
	sckPin   machine.Pin
	sdoPin   machine.Pin
	sdiPin   machine.Pin
	csSdPin  machine.Pin
	csVsPin  machine.Pin
	xrstPin  machine.Pin
	xdcsPin  machine.Pin
	xdreqPin machine.Pin
	ledPin   machine.Pin
	serial   = machine.Serial
)

// triggerMode selects how refill passes are scheduled: "interrupt",
// "timer" or "poll". Set with -ldflags "-X main.triggerMode=poll".
var triggerMode = "interrupt"

type Pin struct {
	*machine.Pin
}

func (pin Pin) Toggle() {
	pin.Set(!pin.Get())
}

func (pin Pin) ErrorBlinkFor(count int) {
	for {
		for i := 0; i < count; i++ {
			pin.High()
			time.Sleep(250 * time.Millisecond)
			pin.Low()
			time.Sleep(250 * time.Millisecond)
		}
		pin.Low()
		time.Sleep(500 * time.Millisecond)
	}
}

func (pin Pin) OkBlinkFor() {
	for {
		pin.High()
		time.Sleep(1000 * time.Millisecond)
		pin.Low()
		time.Sleep(1000 * time.Millisecond)
	}
}

// dreqWatcher delivers DREQ rising edges from the pin interrupt.
type dreqWatcher struct {
	pin machine.Pin
}

func (w dreqWatcher) Watch(handler func()) error {
	return w.pin.SetInterrupt(machine.PinRising, func(machine.Pin) { handler() })
}

func (w dreqWatcher) StopWatching() error {
	return w.pin.SetInterrupt(machine.PinRising, nil)
}

func newTrigger() vs1053.Trigger {
	switch triggerMode {
	case "timer":
		return vs1053.NewTimerTrigger(2 * time.Millisecond)
	case "poll":
		return vs1053.NewPollTrigger()
	}
	return vs1053.NewInterruptTrigger(dreqWatcher{xdreqPin})
}

func main() {
	led := &Pin{&ledPin}
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	code, err := run(led)
	if err != nil {
		fmt.Printf("ERROR[%d]: %s\r\n", code, err.Error())
		led.ErrorBlinkFor(code)
	}

	led.OkBlinkFor()
}

func run(led *Pin) (int, error) {
	println()
	println()
	println("========================")
	println("== pico_tinygo_vs1053 ==")
	println("========================")

	spi.Configure(machine.SPIConfig{
		SCK:       sckPin,
		SDO:       sdoPin,
		SDI:       sdiPin,
		Frequency: vs1053.SlowFreq,
		LSBFirst:  false,
		Mode:      0, // phase=0, polarity=0
	})
	for _, p := range []machine.Pin{csVsPin, xdcsPin, xrstPin} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	xdreqPin.Configure(machine.PinConfig{Mode: machine.PinInput})

	sd := sdcard.New(spi, sckPin, sdoPin, sdiPin, csSdPin)
	if err := sd.Configure(); err != nil {
		return vs1053.CodeCardInit, fmt.Errorf("sdcard configure error: %s", err.Error())
	}
	filesystem := fatfs.New(&sd)
	// Configure FATFS with sector size (must match value in ff.h - use 512)
	filesystem.Configure(&fatfs.Config{
		SectorSize: 512,
	})
	if err := filesystem.Mount(); err != nil {
		return vs1053.CodeVolumeInit, fmt.Errorf("mount error: %s", err.Error())
	}
	fmt.Printf("card mount ok\r\n")

	cfg := vs1053.DefaultConfig()
	cfg.Logger = log.New(os.Stdout, "", 0)
	bus := vs1053.NewPinBus(spi, csVsPin, xdcsPin, xrstPin, xdreqPin, cfg.SlowFreq, cfg.FastFreq)
	codec := vs1053.New(bus, cfg)
	musicPlayer, err := vs1053.NewPlayer(codec, storage.New(filesystem, "/"), newTrigger())
	if err != nil {
		return vs1053.CodeMode, err
	}
	defer musicPlayer.Close()

	if err := musicPlayer.Begin(); err != nil {
		ie, ok := err.(*vs1053.InitError)
		if !ok {
			return vs1053.CodeMode, err
		}
		if ie.Fatal() {
			return ie.Code, ie
		}
		fmt.Printf("%s\r\n", ie.Error())
	}

	var volumeAtt uint8 = 60
	musicPlayer.SetVolume(volumeAtt, volumeAtt)

	fmt.Printf("Playing track 001 (by Blocking)\r\n")
	// Play one file, don't return until complete
	if err := musicPlayer.PlayFullFile("track001.mp3"); err != nil {
		fmt.Printf("track001.mp3: %s\r\n", err.Error())
	}

	fmt.Printf("Playing track 002 (by Non-Blocking)\r\n")
	// Play another file in the background
	if err := musicPlayer.PlayTrack(2); err != nil {
		return vs1053.CodeRootOpen, err
	}

	// file is playing in the background
	for loop := 0; ; loop++ {
		musicPlayer.Poll()
		if musicPlayer.Stopped() {
			fmt.Printf("Done playing music\r\n")
			return 0, nil
		}
		if serial.Buffered() > 0 {
			data, _ := serial.ReadByte()
			switch data {
			case 's':
				musicPlayer.Stop()
			case 'p':
				if !musicPlayer.Paused() {
					fmt.Printf("Paused\r\n")
					musicPlayer.Pause()
				} else {
					fmt.Printf("Resumed\r\n")
					musicPlayer.Resume()
				}
			case 'f':
				musicPlayer.Skip(2000)
			case 'b':
				musicPlayer.Skip(-2000)
			case 't':
				if ms, err := musicPlayer.CurrentPositionMs(); err == nil {
					fmt.Printf("%d ms\r\n", ms)
				}
			case '=', '+':
				if volumeAtt > 0 {
					volumeAtt--
					musicPlayer.SetVolume(volumeAtt, volumeAtt)
				}
			case '-':
				if volumeAtt < 254 {
					volumeAtt++
					musicPlayer.SetVolume(volumeAtt, volumeAtt)
				}
			default:
			}
		}
		if loop%10 == 0 {
			led.Toggle()
		}
		time.Sleep(10 * time.Millisecond)
	}
}
