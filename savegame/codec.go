// Package savegame implements the ordered save channel objects write their
// state through, plus slot storage for finished save blobs.
package savegame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrCorrupt       = errors.New("savegame: corrupt save data")
	ErrSlotNotFound  = errors.New("savegame: slot not found")
	ErrStringTooLong = errors.New("savegame: string too long")
)

const (
	magic = "FROBSAVE"

	// Version is written into every save header.
	Version = 1

	maxStringLen = 1 << 20
)

// Writer is the write half of the save channel. Values are written in call
// order; strings are length-prefixed so any content round-trips.
type Writer struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) WriteHeader() error {
	if _, err := w.w.WriteString(magic); err != nil {
		return fmt.Errorf("savegame: write header: %w", err)
	}
	return w.WriteUint(Version)
}

func (w *Writer) WriteUint(v uint64) error {
	n := binary.PutUvarint(w.buf[:], v)
	if _, err := w.w.Write(w.buf[:n]); err != nil {
		return fmt.Errorf("savegame: write uint: %w", err)
	}
	return nil
}

// WriteString rejects strings longer than the reader accepts.
func (w *Writer) WriteString(s string) error {
	if len(s) > maxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if err := w.WriteUint(uint64(len(s))); err != nil {
		return err
	}
	if _, err := w.w.WriteString(s); err != nil {
		return fmt.Errorf("savegame: write string: %w", err)
	}
	return nil
}

func (w *Writer) WriteBool(b bool) error {
	var v byte
	if b {
		v = 1
	}
	if err := w.w.WriteByte(v); err != nil {
		return fmt.Errorf("savegame: write bool: %w", err)
	}
	return nil
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("savegame: flush: %w", err)
	}
	return nil
}

// Reader is the read half of the save channel. Reads must mirror the writes
// that produced the data; any short or malformed read yields ErrCorrupt.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) ReadHeader() (uint64, error) {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r.r, head); err != nil {
		return 0, corrupt("read header", err)
	}
	if string(head) != magic {
		return 0, fmt.Errorf("%w: bad magic %q", ErrCorrupt, head)
	}
	version, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if version != Version {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}
	return version, nil
}

func (r *Reader) ReadUint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, corrupt("read uint", err)
	}
	return v, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("%w: string length %d", ErrCorrupt, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", corrupt("read string", err)
	}
	return string(buf), nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return false, corrupt("read bool", err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte %#x", ErrCorrupt, b)
	}
}

func corrupt(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: unexpected end of data", ErrCorrupt, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrCorrupt, op, err)
}
