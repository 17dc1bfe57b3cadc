//go:build pico

package main

import (
	"machine"
)

func init() {
	spi = machine.SPI0
	sckPin = machine.GP2
	sdoPin = machine.GP3
	sdiPin = machine.GP4
	csSdPin = machine.GP5
	csVsPin = machine.GP6
	xrstPin = machine.GP7
	xdcsPin = machine.GP8
	xdreqPin = machine.GP9

	ledPin = machine.LED
}
