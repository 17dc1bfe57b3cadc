package vs1053

import (
	"log"
	"time"
)

const (
	SlowFreq = 1000000 // below 12.288 MHz * 3.0 / 7 (for SCI Read)
	FastFreq = 8000000 // below 12.288 MHz * 3.0 / 4 (for SCI Write and SDI Write)
)

const (
	DATA_BUF_LEN    = 32   //!< Length of the data buffer
	FLUSH_FILL_LEN  = 2052 //!< End fill bytes covering the 2048 byte stream buffer, datasheet 9.5.1
	CANCEL_FILL_LEN = 32   //!< End fill bytes sent per cancel attempt
	CANCEL_RETRIES  = 64   //!< Cancel attempts before falling back to soft reset
)

// Config holds the tunables of a Device and its Player. The zero value is
// not usable, start from DefaultConfig.
type Config struct {
	// ChunkSize is the number of bytes moved per refill burst. The chip
	// guarantees room for 32 bytes whenever DREQ is high.
	ChunkSize int
	// FlushFill and CancelFill are the end fill run lengths of the flush
	// protocol, CancelRetries bounds the cancel attempts.
	FlushFill     int
	CancelFill    int
	CancelRetries int

	// ReadyTimeout bounds every wait on DREQ.
	ReadyTimeout time.Duration
	// SeekSettle is how long the output stays muted after a seek.
	SeekSettle time.Duration

	SlowFreq uint32
	FastFreq uint32

	// PluginName is loaded from storage during Begin when not empty.
	PluginName string

	VolumeLeft, VolumeRight uint8

	// Logger receives bring-up and streaming diagnostics, nil is silent.
	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:     DATA_BUF_LEN,
		FlushFill:     FLUSH_FILL_LEN,
		CancelFill:    CANCEL_FILL_LEN,
		CancelRetries: CANCEL_RETRIES,
		ReadyTimeout:  100 * time.Millisecond,
		SeekSettle:    100 * time.Millisecond,
		SlowFreq:      SlowFreq,
		FastFreq:      FastFreq,
		PluginName:    "patches.053",
		VolumeLeft:    40,
		VolumeRight:   40,
	}
}

func (c *Config) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
