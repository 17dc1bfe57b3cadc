package vs1053

import (
	"io"

	"github.com/pkg/errors"
)

// audioStart returns the offset of the first audio byte, skipping an ID3v2
// tag when the file starts with one.
func audioStart(src Source) (start int64, err error) {
	if src == nil {
		return 0, errors.New("nil file")
	}
	if err := src.SeekAbsolute(0); err != nil {
		return 0, errors.Wrap(err, "seek failed")
	}
	var hdr [10]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		// shorter than a tag header, the decoder gets it all
		return 0, nil
	}
	if string(hdr[:3]) != "ID3" {
		return 0, nil
	}
	for i := 6; i < 10; i++ {
		start <<= 7
		start |= 0x7F & int64(hdr[i])
	}
	start += int64(len(hdr))
	if hdr[5]&0x10 != 0 { // footer present
		start += int64(len(hdr))
	}
	return start, nil
}
