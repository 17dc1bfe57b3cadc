package vs1053

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// LoadPlugin writes a compressed VLSI plugin image into the chip. The image
// is a list of little endian words: register address, count, then either
// count values to write, or when bit 15 of count is set a single value
// repeated count&0x7FFF times.
func (d *Device) LoadPlugin(r io.Reader) error {
	var words int
	for {
		addr, err := readWord(r)
		if err == io.EOF {
			d.cfg.logf("vs1053: plugin loaded, %d words", words)
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "plugin word %d", words)
		}
		n, err := readWord(r)
		if err != nil {
			return errors.Wrapf(noEOF(err), "plugin word %d", words)
		}
		words += 2
		if n&0x8000 != 0 {
			val, err := readWord(r)
			if err != nil {
				return errors.Wrapf(noEOF(err), "plugin word %d", words)
			}
			words++
			for n &= 0x7FFF; n > 0; n-- {
				if err := d.sciWrite(uint8(addr), val); err != nil {
					return err
				}
			}
			continue
		}
		for ; n > 0; n-- {
			val, err := readWord(r)
			if err != nil {
				return errors.Wrapf(noEOF(err), "plugin word %d", words)
			}
			words++
			if err := d.sciWrite(uint8(addr), val); err != nil {
				return err
			}
		}
	}
}

func readWord(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
