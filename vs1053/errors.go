package vs1053

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrAlreadyPlaying = errors.New("vs1053: already playing")
	ErrNotFound       = errors.New("vs1053: file not found")
	ErrInReset        = errors.New("vs1053: chip in reset")
	ErrNotReady       = errors.New("vs1053: player not ready")
	ErrNotPlaying     = errors.New("vs1053: not playing")
	ErrUnknownBitRate = errors.New("vs1053: bit rate unknown")
	ErrSeek           = errors.New("vs1053: seek failed")
	ErrReadyTimeout   = errors.New("vs1053: timeout waiting for DREQ")
	ErrCancelFailed   = errors.New("vs1053: decoder ignored cancel, chip was reset")
	ErrBusy           = errors.New("vs1053: operation not allowed in current state")
)

// Bring-up failure codes, numbered as by the SparkFun MP3 shield library.
const (
	CodeCardInit   = 1
	CodeVolumeInit = 2
	CodeRootOpen   = 3
	CodeMode       = 4
	CodeClock      = 5
	CodePlugin     = 6
	CodeVersion    = 7
)

// InitError reports a failed bring-up step together with its numeric code.
type InitError struct {
	Code int
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("vs1053 init error %d: %s", e.Code, e.Err.Error())
}

func (e *InitError) Unwrap() error { return e.Err }

// Fatal is false when the player is still usable, which is only the case
// for a plugin that could not be loaded.
func (e *InitError) Fatal() bool { return e.Code != CodePlugin }

func initError(code int, err error) *InitError {
	return &InitError{Code: code, Err: err}
}
