package vs1053

import (
	"io"

	"github.com/pkg/errors"
)

// frameScanLen bounds how far past the start of audio a frame header is
// looked for.
const frameScanLen = 2048

// kbit/s by bitrate index, 0 is free format and 15 is invalid
var (
	mpeg1Rates = [3][15]int64{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448}, // layer I
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384},    // layer II
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},     // layer III
	}
	mpeg2Layer1Rates  = [15]int64{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256}
	mpeg2Layer23Rates = [15]int64{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
)

// frameBitRate decodes the bit rate of a 4 byte MPEG audio frame header in
// kbit/s, 0 when h is not a usable header.
func frameBitRate(h []byte) int64 {
	if len(h) < 4 || h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return 0
	}
	version := (h[1] >> 3) & 0x03 // 3: MPEG-1, 2: MPEG-2, 0: MPEG-2.5
	layer := (h[1] >> 1) & 0x03   // 3: I, 2: II, 1: III
	index := h[2] >> 4
	if version == 1 || layer == 0 || index == 0 || index == 15 || (h[2]>>2)&0x03 == 3 {
		return 0
	}
	switch {
	case version == 3:
		return mpeg1Rates[3-layer][index]
	case layer == 3:
		return mpeg2Layer1Rates[index]
	}
	return mpeg2Layer23Rates[index]
}

// frameByteRate returns the rate, in bytes per second, of the first frame
// header found from start, 0 when there is none. The read position of src
// is left undefined.
func frameByteRate(src Source, start int64) (int64, error) {
	if err := src.SeekAbsolute(start); err != nil {
		return 0, errors.Wrap(err, "seek failed")
	}
	buf := make([]byte, frameScanLen)
	n, err := io.ReadFull(src, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, errors.Wrap(err, "read failed")
	}
	for i := 0; i+4 <= n; i++ {
		if kbps := frameBitRate(buf[i : i+4]); kbps != 0 {
			return kbps * 1000 / 8, nil
		}
	}
	return 0, nil
}
