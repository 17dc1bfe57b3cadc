package vs1053

import (
	"io"
)

// service is the pass bound to the trigger. Passes are serialized with
// every foreground operation by p.mu and dropped once the trigger has been
// disarmed, so none runs against a track being closed or moved.
func (p *Player) service() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || !p.trig.Armed() {
		return
	}
	p.refill()
}

// refill feeds the hungry buffer while DREQ asks for data. Must be called
// with p.mu held.
func (p *Player) refill() {
	for p.state == Playing && p.codec.readyForData() {
		// Read some audio data from the SD card file
		br, err := p.currentTrack.Read(p.mp3Buf)
		if br > 0 {
			if werr := p.codec.playData(p.mp3Buf[:br]); werr != nil {
				p.endStream(werr)
				return
			}
		}
		if br == 0 || err != nil {
			// must be at the end of the file, wrap it up!
			p.endStream(err)
			return
		}
	}
}

// endStream closes the track after its last byte was sent or a read
// failed. Read errors end the stream like end of file, they are kept for
// StreamErr.
func (p *Player) endStream(cause error) {
	p.closeTrack()
	p.setState(Ready)
	if cause != nil && cause != io.EOF {
		p.cfg.logf("vs1053: stream ended early: %s", cause.Error())
		p.streamErr = cause
	}
	if err := p.cancel(FlushPost); err != nil && p.streamErr == nil {
		p.streamErr = err
	}
}
