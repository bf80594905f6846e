// Package chunked implements the nestable tag/length/value binary container
// for engine data that is not stored in a ZIP archive.
//
// Every chunk is {u16 id, u32 size, size bytes of payload}, little-endian.
// A chunk's payload may itself be a sequence of chunks; nesting depth is
// bounded only by the writer's internal stack.
package chunked

import (
	"encoding/binary"
	"fmt"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

const (
	idSize   = 2
	sizeSize = 4
)

// Writer builds a chunked byte stream. The zero value is ready to use.
type Writer struct {
	buf   []byte
	stack []int // offsets of the pending size field for each open chunk

	Logger *debug.Logger
}

// NewWriter returns a Writer ready to accept chunks.
func NewWriter(logger *debug.Logger) *Writer {
	return &Writer{Logger: logger}
}

// BeginChunk writes the chunk id and reserves space for its size, pushing
// the size-slot offset onto the nesting stack.
func (w *Writer) BeginChunk(id uint16) {
	w.buf = append(w.buf, 0, 0, 0, 0, 0, 0)
	binary.LittleEndian.PutUint16(w.buf[len(w.buf)-6:], id)
	w.stack = append(w.stack, len(w.buf)-sizeSize)
}

// EndChunk pops the nesting stack and back-patches the reserved size field
// with the number of bytes written since the matching BeginChunk.
func (w *Writer) EndChunk() {
	if len(w.stack) == 0 {
		panic("chunked: EndChunk with no open chunk")
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	dataStart := top + sizeSize
	size := uint32(len(w.buf) - dataStart)
	binary.LittleEndian.PutUint32(w.buf[top:top+sizeSize], size)
}

func (w *Writer) writeHeader(id uint16, size uint32) {
	var hdr [idSize + sizeSize]byte
	binary.LittleEndian.PutUint16(hdr[:idSize], id)
	binary.LittleEndian.PutUint32(hdr[idSize:], size)
	w.buf = append(w.buf, hdr[:]...)
}

// WriteBytes emits a complete leaf chunk carrying data verbatim.
func (w *Writer) WriteBytes(id uint16, data []byte) {
	if len(data) > 1<<31-1 {
		panic("chunked: chunk payload too large")
	}
	w.writeHeader(id, uint32(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteString emits a leaf chunk carrying the UTF-8 bytes of s.
func (w *Writer) WriteString(id uint16, s string) {
	w.WriteBytes(id, []byte(s))
}

// WriteU8 emits a 1-byte leaf chunk.
func (w *Writer) WriteU8(id uint16, v uint8) {
	w.WriteBytes(id, []byte{v})
}

// WriteU16 emits a 2-byte little-endian leaf chunk.
func (w *Writer) WriteU16(id uint16, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.WriteBytes(id, b[:])
}

// WriteU32 emits a 4-byte little-endian leaf chunk.
func (w *Writer) WriteU32(id uint16, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.WriteBytes(id, b[:])
}

// Finish returns the serialized byte stream. It is an error (a panic, since
// a non-empty stack at Finish time is a programmer error) to call Finish
// with chunks still open.
func (w *Writer) Finish() []byte {
	if len(w.stack) != 0 {
		panic(fmt.Sprintf("chunked: Finish with %d chunk(s) still open", len(w.stack)))
	}
	if w.Logger != nil {
		w.Logger.LogChunkf(debug.LogLevelDebug, "finished stream, %d bytes", len(w.buf))
	}
	return w.buf
}

// Reader walks a chunked byte stream produced by Writer.
type Reader struct {
	buf   []byte
	pos   int
	stack []int // end offsets of each open chunk, for closeChunk verification

	Logger *debug.Logger
}

// NewReader wraps buf for chunk-by-chunk reading.
func NewReader(buf []byte, logger *debug.Logger) *Reader {
	return &Reader{buf: buf, Logger: logger}
}

// Eof reports whether the cursor has reached the end of the stream.
func (r *Reader) Eof() bool {
	return r.pos >= len(r.buf)
}

// PeekHeader returns the id and size of the chunk at the current cursor
// without consuming it. ok is false if there isn't a full header left to
// read.
func (r *Reader) PeekHeader() (id uint16, size uint32, ok bool) {
	if r.pos+idSize+sizeSize > len(r.buf) {
		return 0, 0, false
	}
	id = binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+idSize])
	size = binary.LittleEndian.Uint32(r.buf[r.pos+idSize : r.pos+idSize+sizeSize])
	return id, size, true
}

func (r *Reader) readHeader(expectedID uint16) (size uint32, err error) {
	id, size, ok := r.PeekHeader()
	if !ok {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader", fmt.Errorf("truncated stream at offset %d", r.pos))
	}
	if id != expectedID {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader", fmt.Errorf("chunk id mismatch: want 0x%04X, got 0x%04X at offset %d", expectedID, id, r.pos))
	}
	r.pos += idSize + sizeSize
	if r.pos+int(size) > len(r.buf) {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader", fmt.Errorf("chunk 0x%04X declares size %d past end of stream", expectedID, size))
	}
	return size, nil
}

// OpenChunk asserts the chunk at the cursor matches expectedID, consumes its
// header, and pushes the chunk's end offset so nested reads know their
// bound and CloseChunk can verify structural symmetry.
func (r *Reader) OpenChunk(expectedID uint16) error {
	size, err := r.readHeader(expectedID)
	if err != nil {
		return err
	}
	r.stack = append(r.stack, r.pos+int(size))
	return nil
}

// CloseChunk asserts the read cursor sits exactly at the top-of-stack end
// offset recorded by the matching OpenChunk — the strict structural
// verification spec.md requires.
func (r *Reader) CloseChunk() error {
	if len(r.stack) == 0 {
		return errs.New(errs.KindCorrupt, "chunked.Reader.CloseChunk", fmt.Errorf("no open chunk"))
	}
	top := r.stack[len(r.stack)-1]
	if top != r.pos {
		return errs.New(errs.KindCorrupt, "chunked.Reader.CloseChunk", fmt.Errorf("cursor at %d, expected nest end %d", r.pos, top))
	}
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

// ReadBytes reads a leaf chunk's full payload.
func (r *Reader) ReadBytes(expectedID uint16) ([]byte, error) {
	size, err := r.readHeader(expectedID)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	copy(data, r.buf[r.pos:r.pos+int(size)])
	r.pos += int(size)
	return data, nil
}

// ReadString reads a leaf chunk's payload as a UTF-8 string.
func (r *Reader) ReadString(expectedID uint16) (string, error) {
	b, err := r.ReadBytes(expectedID)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadU8 reads a 1-byte leaf chunk.
func (r *Reader) ReadU8(expectedID uint16) (uint8, error) {
	b, err := r.ReadBytes(expectedID)
	if err != nil {
		return 0, err
	}
	if len(b) != 1 {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader.ReadU8", fmt.Errorf("chunk 0x%04X has size %d, want 1", expectedID, len(b)))
	}
	return b[0], nil
}

// ReadU16 reads a 2-byte little-endian leaf chunk.
func (r *Reader) ReadU16(expectedID uint16) (uint16, error) {
	b, err := r.ReadBytes(expectedID)
	if err != nil {
		return 0, err
	}
	if len(b) != 2 {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader.ReadU16", fmt.Errorf("chunk 0x%04X has size %d, want 2", expectedID, len(b)))
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a 4-byte little-endian leaf chunk.
func (r *Reader) ReadU32(expectedID uint16) (uint32, error) {
	b, err := r.ReadBytes(expectedID)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, errs.New(errs.KindCorrupt, "chunked.Reader.ReadU32", fmt.Errorf("chunk 0x%04X has size %d, want 4", expectedID, len(b)))
	}
	return binary.LittleEndian.Uint32(b), nil
}
