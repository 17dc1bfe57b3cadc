package vs1053

// Source is an open audio file. Read follows io.Reader, a zero count or any
// error ends the stream.
type Source interface {
	Read(buf []byte) (n int, err error)
	SeekAbsolute(offset int64) error
	SeekRelative(delta int64) error
	// SeekEnd moves to offset bytes before the end of the file.
	SeekEnd(offset int64) error
	Tell() (int64, error)
	Close() error
}

// Opener opens Sources by name, typically on an SD card.
type Opener interface {
	Open(name string) (Source, error)
}
