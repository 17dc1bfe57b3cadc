// Package storage opens audio files on a tinyfs filesystem, usually FAT on
// an SD card, as sources for the vs1053 player.
package storage

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"tinygo.org/x/tinyfs"

	"github.com/elehobica/vs10xx_player/vs1053"
)

var ErrNotSeekable = errors.New("storage: file does not support seeking")

// discardLen is the scratch buffer used to read forward when the file
// cannot seek itself.
const discardLen = 512

// Filesystem is the part of tinyfs.Filesystem used to open tracks.
type Filesystem interface {
	OpenFile(path string, flags int) (tinyfs.File, error)
	Stat(path string) (os.FileInfo, error)
}

// absoluteSeeker is the seek API of FAT ports that position from the start
// of the file only. Upstream fatfs files have no seek at all.
type absoluteSeeker interface {
	Seek(offset int64) error
}

// FS opens files relative to a root directory.
type FS struct {
	fs   Filesystem
	root string
}

func New(fs Filesystem, root string) *FS {
	if root == "" {
		root = "/"
	}
	return &FS{fs: fs, root: root}
}

func (s *FS) Open(name string) (vs1053.Source, error) {
	p := name
	if !path.IsAbs(p) {
		p = path.Join(s.root, name)
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", p)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", p)
	}
	f, err := s.fs.OpenFile(p, os.O_RDONLY)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	return &File{fs: s.fs, f: f, name: p, size: info.Size()}, nil
}

// File is an open track. It keeps its own read position so Tell works on
// filesystems without one. Files that cannot seek are positioned by reading
// forward, and by reopening them to go back.
type File struct {
	fs      Filesystem
	f       tinyfs.File
	name    string
	size    int64
	pos     int64
	scratch []byte
}

func (f *File) Name() string { return f.name }

func (f *File) Size() int64 { return f.size }

func (f *File) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := f.f.Read(buf)
	f.pos += int64(n)
	if err == nil && n == 0 {
		err = io.EOF
	}
	return n, err
}

func (f *File) SeekAbsolute(offset int64) error {
	if offset < 0 || offset > f.size {
		return errors.Errorf("seek %s to %d outside 0..%d", f.name, offset, f.size)
	}
	switch s := f.f.(type) {
	case io.Seeker:
		if _, err := s.Seek(offset, io.SeekStart); err != nil {
			return errors.Wrapf(err, "seek %s", f.name)
		}
		f.pos = offset
		return nil
	case absoluteSeeker:
		if err := s.Seek(offset); err != nil {
			return errors.Wrapf(err, "seek %s", f.name)
		}
		f.pos = offset
		return nil
	}
	if offset < f.pos {
		if err := f.reopen(); err != nil {
			return err
		}
	}
	return f.discard(offset - f.pos)
}

// reopen puts the read position back to the start of the file.
func (f *File) reopen() error {
	if f.fs == nil {
		return ErrNotSeekable
	}
	if err := f.f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", f.name)
	}
	h, err := f.fs.OpenFile(f.name, os.O_RDONLY)
	if err != nil {
		return errors.Wrapf(err, "reopen %s", f.name)
	}
	f.f = h
	f.pos = 0
	return nil
}

// discard reads n bytes forward.
func (f *File) discard(n int64) error {
	if n > 0 && f.scratch == nil {
		f.scratch = make([]byte, discardLen)
	}
	for n > 0 {
		buf := f.scratch
		if int64(len(buf)) > n {
			buf = buf[:n]
		}
		got, err := f.f.Read(buf)
		f.pos += int64(got)
		n -= int64(got)
		if n == 0 {
			break
		}
		if err == io.EOF || (err == nil && got == 0) {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return errors.Wrapf(err, "seek %s to %d", f.name, f.pos+n)
		}
	}
	return nil
}

func (f *File) SeekRelative(delta int64) error {
	return f.SeekAbsolute(f.pos + delta)
}

func (f *File) SeekEnd(offset int64) error {
	return f.SeekAbsolute(f.size - offset)
}

func (f *File) Tell() (int64, error) {
	return f.pos, nil
}

func (f *File) Close() error {
	return f.f.Close()
}
