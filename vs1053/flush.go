package vs1053

import (
	"github.com/pkg/errors"
)

// flushCancel ends the current decode cleanly so the next stream starts
// from a synced decoder (datasheet 9.5.1). The end fill byte is padded in
// according to mode, then SM_CANCEL is requested until the chip clears it.
// A chip that never does is soft reset and ErrCancelFailed returned, its
// configuration is lost and bring-up must run again.
func (d *Device) flushCancel(mode FlushMode) error {
	if d.bus.InReset() {
		return ErrInReset
	}
	word, err := d.ReadExtended(PARA_END_FILL_BYTE)
	if err != nil {
		return errors.Wrap(err, "read end fill byte")
	}
	fill := byte(word & 0xFF)

	if mode.fillFirst() {
		if err := d.sendFill(fill, d.cfg.FlushFill); err != nil {
			return err
		}
	}

	for n := 0; n < d.cfg.CancelRetries; n++ {
		if err := d.modifyRegister(REG_MODE, MODE_SM_CANCEL, MODE_SM_CANCEL); err != nil {
			return err
		}
		if err := d.sendFill(fill, d.cfg.CancelFill); err != nil {
			return err
		}
		m, err := d.sciRead(REG_MODE)
		if err != nil {
			return err
		}
		if m&MODE_SM_CANCEL == 0 {
			if mode.fillAfter() {
				return d.sendFill(fill, d.cfg.FlushFill)
			}
			return nil
		}
	}

	if err := d.sciWrite(REG_MODE, MODE_DEFAULT|MODE_SM_RESET); err != nil {
		return err
	}
	return errors.Wrapf(ErrCancelFailed, "cancel still set after %d attempts", d.cfg.CancelRetries)
}
