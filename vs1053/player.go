/*!
 * @file Adafruit_VS1053.cpp
 *
 * @mainpage Adafruit VS1053 Library
 *
 * @section intro_sec Introduction
 *
 * This is a library for the Adafruit VS1053 Codec Breakout
 *
 * Designed specifically to work with the Adafruit VS1053 Codec Breakout
 * ----> https://www.adafruit.com/products/1381
 *
 * Adafruit invests time and resources providing this open source code,
 * please support Adafruit and open-source hardware by purchasing
 * products from Adafruit!
 *
 * @section author Author
 *
 * Written by Limor Fried/Ladyada for Adafruit Industries.
 *
 * @section license License
 *
 * BSD license, all text above must be included in any redistribution
 */

/*
 * ported to TinyGo by Elehobica, 2022
 */

package vs1053

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Player streams files from an Opener into a Device. It owns the playback
// state, the open track and the refill trigger: the trigger is armed
// exactly while the state is Playing.
type Player struct {
	codec *Device
	fs    Opener
	trig  Trigger
	cfg   Config
	sleep func(time.Duration)

	mu           sync.Mutex
	state        State
	currentTrack Source
	startOfAudio int64
	bitRate      uint16 // kbit/s override, 0 auto detects
	fileRate     int64  // bytes/s from the first frame header, 0 if none
	mp3Buf       []byte
	streamErr    error

	// armMu orders state changes against the trigger being armed again
	// after a register access, which happens without mu.
	armMu sync.Mutex
}

// NewPlayer binds trig to the refill pass of a new Player. The player starts
// Uninitialized, call Begin before Play.
func NewPlayer(codec *Device, fs Opener, trig Trigger) (*Player, error) {
	cfg := codec.cfg
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DATA_BUF_LEN
	}
	p := &Player{
		codec:  codec,
		fs:     fs,
		trig:   trig,
		cfg:    cfg,
		sleep:  codec.sleep,
		state:  Uninitialized,
		mp3Buf: make([]byte, cfg.ChunkSize),
	}
	if err := trig.Bind(p.service); err != nil {
		return nil, errors.Wrap(err, "bind refill trigger")
	}
	if l, ok := trig.(interface{ setLogger(func(string, ...interface{})) }); ok {
		l.setLogger(p.cfg.logf)
	}
	codec.trig = trig
	codec.rearm = p.rearm
	return p, nil
}

// setState moves to s and disarms the trigger unless s is Playing. Must be
// called with p.mu held.
func (p *Player) setState(s State) {
	p.armMu.Lock()
	defer p.armMu.Unlock()
	p.state = s
	if s != Playing {
		p.trig.Disarm()
	}
}

// rearm arms the trigger if the player is still Playing.
func (p *Player) rearm() {
	p.armMu.Lock()
	defer p.armMu.Unlock()
	if p.state == Playing {
		p.trig.Arm()
	}
}

// Begin brings the decoder up and loads the plugin named in the Config. A
// plugin failure is returned as a non fatal *InitError and leaves the player
// Ready.
func (p *Player) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Deactivated {
		return ErrNotReady
	}
	if p.state.hasStream() {
		return ErrAlreadyPlaying
	}
	return p.bringUp()
}

func (p *Player) bringUp() error {
	p.setState(Uninitialized)
	if err := p.codec.Configure(); err != nil {
		p.cfg.logf("vs1053: bring-up failed: %s", err.Error())
		return err
	}
	p.setState(Initialized)

	var pluginErr error
	if p.cfg.PluginName != "" && p.fs != nil {
		p.setState(Loading)
		if err := p.loadPlugin(p.cfg.PluginName); err != nil {
			p.cfg.logf("vs1053: plugin %s not loaded: %s", p.cfg.PluginName, err.Error())
			pluginErr = initError(CodePlugin, err)
		}
	}
	p.setState(Ready)
	return pluginErr
}

func (p *Player) loadPlugin(name string) error {
	src, err := p.fs.Open(name)
	if err != nil {
		return errors.Wrapf(ErrNotFound, "plugin %s: %s", name, err.Error())
	}
	defer src.Close()
	return p.codec.LoadPlugin(src)
}

// End stops playback and holds the chip in reset. The player cannot be
// used afterwards.
func (p *Player) End() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.state.hasStream() && !p.codec.InReset() {
		err = p.stopLocked()
	}
	p.closeTrack()
	p.setState(Deactivated)
	p.codec.bus.HoldReset(true)
	return err
}

// Close releases the trigger machinery.
func (p *Player) Close() error {
	return p.trig.Close()
}

// Play opens name and starts streaming it from startMs into the track.
// Reaching the end of the file returns the player to Ready on its own.
func (p *Player) Play(name string, startMs uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.codec.InReset() {
		return ErrInReset
	}
	switch {
	case p.state.hasStream():
		return ErrAlreadyPlaying
	case p.state != Ready:
		return ErrNotReady
	}

	track, err := p.fs.Open(name)
	if err != nil {
		return errors.Wrapf(ErrNotFound, "%s: %s", name, err.Error())
	}

	start, err := audioStart(track)
	if err != nil {
		track.Close()
		return errors.Wrapf(ErrSeek, "%s: %s", name, err.Error())
	}
	fileRate, err := frameByteRate(track, start)
	if err != nil {
		track.Close()
		return errors.Wrapf(ErrSeek, "%s: %s", name, err.Error())
	}
	pos := start
	if startMs > 0 {
		rate := p.knownByteRate(fileRate)
		if rate == 0 {
			track.Close()
			return ErrUnknownBitRate
		}
		pos += msToBytes(int64(startMs), rate)
	}
	if err := track.SeekAbsolute(pos); err != nil {
		track.Close()
		return errors.Wrapf(ErrSeek, "%s: %s", name, err.Error())
	}

	if err := p.resetPlayback(); err != nil {
		track.Close()
		return err
	}

	p.currentTrack = track
	p.startOfAudio = start
	p.fileRate = fileRate
	p.streamErr = nil
	p.setState(Playing)

	// fill it up!
	p.refill()
	p.rearm()
	return nil
}

// PlayTrack plays trackNNN.mp3 from the start.
func (p *Player) PlayTrack(n uint8) error {
	return p.Play(fmt.Sprintf("track%03d.mp3", n), 0)
}

// resetPlayback clears decoder state left by the previous stream.
func (p *Player) resetPlayback() error {
	if err := p.codec.sciWrite(REG_MODE, MODE_DEFAULT); err != nil {
		return err
	}
	// resync
	if err := p.codec.WriteExtended(PARA_RESYNC, 0); err != nil {
		return err
	}
	// As explained in datasheet, set twice 0 in REG_DECODETIME to set time back to 0
	if err := p.codec.sciWrite(REG_DECODETIME, 0x00); err != nil {
		return err
	}
	return p.codec.sciWrite(REG_DECODETIME, 0x00)
}

// Stop ends playback, letting the decoder finish what it already has. It
// is a no-op when nothing is playing.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.hasStream() {
		return nil
	}
	if p.codec.InReset() {
		return ErrInReset
	}
	return p.stopLocked()
}

func (p *Player) stopLocked() error {
	p.closeTrack()
	p.setState(Ready)
	return p.cancel(FlushPre)
}

// Pause stops feeding the decoder, which drains its buffer and goes quiet.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return ErrInReset
	}
	switch p.state {
	case PausedPlaying:
		return nil
	case Playing:
		p.setState(PausedPlaying)
		return nil
	}
	return ErrNotPlaying
}

// Resume continues a paused track from the exact byte it stopped at.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return ErrInReset
	}
	switch p.state {
	case Playing:
		return nil
	case PausedPlaying:
		p.setState(Playing)
		p.refill()
		p.rearm()
		return nil
	}
	return ErrNotPlaying
}

func (p *Player) IsPlaying() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codec.InReset() {
		return StatusChipInReset
	}
	switch p.state {
	case Playing, Seeking:
		return StatusPlaying
	case PausedPlaying:
		return StatusPaused
	}
	return StatusIdle
}

func (p *Player) Paused() bool {
	return p.IsPlaying() == StatusPaused
}

func (p *Player) Stopped() bool {
	return p.IsPlaying() == StatusIdle
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// StreamErr returns the read or bus error that ended the last stream, nil
// when it ended at end of file or was stopped.
func (p *Player) StreamErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamErr
}

// Poll runs one refill pass when the player was built on a PollTrigger.
func (p *Player) Poll() {
	p.trig.Poll()
}

// PlayFullFile plays name and returns once it ended or was stopped.
func (p *Player) PlayFullFile(name string) error {
	if err := p.Play(name, 0); err != nil {
		return errors.Wrap(err, "StartPlayingFile failed")
	}
	for {
		switch p.IsPlaying() {
		case StatusIdle, StatusChipInReset:
			// music file finished!
			return p.StreamErr()
		}
		p.Poll()
		p.sleep(5 * time.Millisecond) // give the trigger a chance to run
	}
}

// SetVolume is Device.SetVolume serialized with the refill pass.
func (p *Player) SetVolume(left, right uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.codec.SetVolume(left, right)
}

func (p *Player) closeTrack() {
	if p.currentTrack == nil {
		return
	}
	if err := p.currentTrack.Close(); err != nil {
		p.cfg.logf("vs1053: close track: %s", err.Error())
	}
	p.currentTrack = nil
}

// cancel runs the flush protocol. When the chip had to be reset the player
// drops back to Uninitialized so Begin runs again before the next Play.
func (p *Player) cancel(mode FlushMode) error {
	err := p.codec.flushCancel(mode)
	if errors.Is(err, ErrCancelFailed) {
		p.cfg.logf("vs1053: %s", err.Error())
		p.setState(Uninitialized)
	}
	return err
}
