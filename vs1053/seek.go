package vs1053

import (
	"github.com/pkg/errors"
)

// SetBitRate fixes the bit rate, in kbit/s, used to turn milliseconds into
// file offsets. 0 goes back to auto detection. Offsets are estimates for
// variable bit rate streams.
func (p *Player) SetBitRate(kbps uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bitRate = kbps
}

// knownByteRate returns the SetBitRate override or else fileRate, in bytes
// per second, 0 when neither is known.
func (p *Player) knownByteRate(fileRate int64) int64 {
	if p.bitRate != 0 {
		return int64(p.bitRate) * 1000 / 8
	}
	return fileRate
}

// byteRate is the rate of the current stream in bytes per second. Without
// an override or a frame header the decoder's own measurement is used.
func (p *Player) byteRate() (int64, error) {
	if rate := p.knownByteRate(p.fileRate); rate != 0 {
		return rate, nil
	}
	rate, err := p.codec.ReadExtended(PARA_BYTE_RATE)
	if err != nil {
		return 0, err
	}
	if rate == 0 {
		return 0, ErrUnknownBitRate
	}
	return int64(rate), nil
}

func msToBytes(ms, byteRate int64) int64 {
	return ms * byteRate / 1000
}

// SkipTo moves playback to ms from the start of the audio.
func (p *Player) SkipTo(ms uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rate, err := p.seekable()
	if err != nil {
		return err
	}
	offset := p.startOfAudio + msToBytes(int64(ms), rate)
	return p.seek(func() error {
		return p.currentTrack.SeekAbsolute(offset)
	})
}

// Skip moves playback by deltaMs from the current read position. Skipping
// back past the start lands on the first audio byte.
func (p *Player) Skip(deltaMs int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rate, err := p.seekable()
	if err != nil {
		return err
	}
	delta := msToBytes(int64(deltaMs), rate)
	return p.seek(func() error {
		pos, err := p.currentTrack.Tell()
		if err != nil {
			return err
		}
		if pos+delta < p.startOfAudio {
			return p.currentTrack.SeekAbsolute(p.startOfAudio)
		}
		return p.currentTrack.SeekRelative(delta)
	})
}

func (p *Player) seekable() (int64, error) {
	if p.codec.InReset() {
		return 0, ErrInReset
	}
	if p.state != Playing && p.state != PausedPlaying {
		return 0, ErrNotPlaying
	}
	return p.byteRate()
}

// seek runs move with the trigger disarmed, then mutes, cancels the old
// decode, primes the decoder from the new position and restores volume
// once it settled. The player ends up Playing.
func (p *Player) seek(move func() error) error {
	prev := p.state
	p.setState(Seeking)

	if err := move(); err != nil {
		p.setState(prev)
		p.rearm()
		return errors.Wrap(ErrSeek, err.Error())
	}

	if err := p.codec.mute(); err != nil {
		p.setState(prev)
		p.rearm()
		return err
	}
	if err := p.cancel(FlushPre); err != nil {
		if p.state == Uninitialized {
			p.closeTrack()
		} else {
			p.codec.unmute()
			p.setState(prev)
			p.rearm()
		}
		return err
	}

	p.setState(Playing)
	p.refill()
	p.sleep(p.cfg.SeekSettle)
	if err := p.codec.unmute(); err != nil {
		p.cfg.logf("vs1053: restore volume: %s", err.Error())
	}
	p.rearm()
	return nil
}

// CurrentPositionMs returns the play position reported by the decoder.
// Codecs that know it from the stream report milliseconds directly, the
// others fall back to the whole seconds of SCI_DECODE_TIME.
func (p *Player) CurrentPositionMs() (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return 0, ErrInReset
	}
	lo, err := p.codec.ReadExtended(PARA_POSITION_MSEC_0)
	if err != nil {
		return 0, err
	}
	hi, err := p.codec.ReadExtended(PARA_POSITION_MSEC_1)
	if err != nil {
		return 0, err
	}
	if pos := uint32(hi)<<16 | uint32(lo); pos != 0xFFFFFFFF {
		return pos, nil
	}
	sec, err := p.codec.ReadRegister(REG_DECODETIME)
	if err != nil {
		return 0, err
	}
	return uint32(sec) * 1000, nil
}
