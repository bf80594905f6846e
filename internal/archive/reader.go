package archive

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

const maxCommentScan = 65536 + 22 // comment field is at most 65535 bytes

// Reader opens and indexes a ZIP archive for entry lookup and extraction.
type Reader struct {
	ra      io.ReaderAt
	size    int64
	entries []*Entry
	comment string

	Logger *debug.Logger
}

// Open locates the end-of-central-directory record, reads every central
// directory entry (parsing its NTFS extra), and follows each to its local
// header to compute the payload offset. ra must support random access (the
// ZIP format is read from the tail backward).
func Open(ra io.ReaderAt, size int64, logger *debug.Logger) (*Reader, error) {
	r := &Reader{ra: ra, size: size, Logger: logger}
	eocdOff, err := r.findEndOfCentralDir()
	if err != nil {
		return nil, err
	}
	if err := r.readEndOfCentralDir(eocdOff); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) readAt(off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > r.size {
		return nil, errs.New(errs.KindCorrupt, "archive.Reader", fmt.Errorf("read past end of archive at %d", off))
	}
	buf := make([]byte, n)
	if _, err := r.ra.ReadAt(buf, off); err != nil {
		return nil, errs.New(errs.KindCorrupt, "archive.Reader", err)
	}
	return buf, nil
}

// findEndOfCentralDir scans backward from EOF for the 4-byte EOCD
// signature, verifying record_offset + sizeof(record) + comment_length ==
// file_size as spec.md requires.
func (r *Reader) findEndOfCentralDir() (int64, error) {
	scanLen := int64(maxCommentScan)
	if scanLen > r.size {
		scanLen = r.size
	}
	start := r.size - scanLen
	buf, err := r.readAt(start, int(scanLen))
	if err != nil {
		return 0, err
	}
	for i := len(buf) - 22; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:]) == signEndOfCentralDir {
			commentLen := binary.LittleEndian.Uint16(buf[i+20 : i+22])
			off := start + int64(i)
			if off+22+int64(commentLen) == r.size {
				return off, nil
			}
		}
	}
	return 0, errs.New(errs.KindCorrupt, "archive.Reader.Open", fmt.Errorf("end-of-central-directory record not found"))
}

func (r *Reader) readEndOfCentralDir(off int64) error {
	buf, err := r.readAt(off, 22)
	if err != nil {
		return err
	}
	entryCount := binary.LittleEndian.Uint16(buf[10:12])
	cdSize := binary.LittleEndian.Uint32(buf[12:16])
	cdOffset := binary.LittleEndian.Uint32(buf[16:20])
	commentLen := binary.LittleEndian.Uint16(buf[20:22])

	commentBytes, err := r.readAt(off+22, int(commentLen))
	if err != nil {
		return err
	}
	r.comment = string(commentBytes)

	cdBuf, err := r.readAt(int64(cdOffset), int(cdSize))
	if err != nil {
		return err
	}

	pos := 0
	for i := 0; i < int(entryCount); i++ {
		e, consumed, err := parseCentralDirEntry(cdBuf[pos:])
		if err != nil {
			return err
		}
		pos += consumed
		if err := r.resolveLocalHeader(e); err != nil {
			return err
		}
		r.entries = append(r.entries, e)
	}
	return nil
}

func parseCentralDirEntry(buf []byte) (*Entry, int, error) {
	if len(buf) < 46 || binary.LittleEndian.Uint32(buf) != signCentralDirHeader {
		return nil, 0, errs.New(errs.KindCorrupt, "archive.Reader", fmt.Errorf("bad central directory header signature"))
	}
	flag := binary.LittleEndian.Uint16(buf[8:10])
	method := binary.LittleEndian.Uint16(buf[10:12])
	timeWord := binary.LittleEndian.Uint16(buf[12:14])
	date := binary.LittleEndian.Uint16(buf[14:16])
	crc := binary.LittleEndian.Uint32(buf[16:20])
	compSize := binary.LittleEndian.Uint32(buf[20:24])
	uncompSize := binary.LittleEndian.Uint32(buf[24:28])
	nameLen := int(binary.LittleEndian.Uint16(buf[28:30]))
	extraLen := int(binary.LittleEndian.Uint16(buf[30:32]))
	commentLen := int(binary.LittleEndian.Uint16(buf[32:34]))
	localHeaderOffset := binary.LittleEndian.Uint32(buf[42:46])

	total := 46 + nameLen + extraLen + commentLen
	if len(buf) < total {
		return nil, 0, errs.New(errs.KindCorrupt, "archive.Reader", fmt.Errorf("truncated central directory entry"))
	}
	nameBytes := buf[46 : 46+nameLen]
	extraBytes := buf[46+nameLen : 46+nameLen+extraLen]
	commentBytes := buf[46+nameLen+extraLen : total]

	name, err := decodeName(nameBytes, flag&flagUTF8FileName != 0)
	if err != nil {
		return nil, 0, errs.New(errs.KindCorrupt, "archive.Reader", err)
	}

	e := &Entry{
		Name:               name,
		CRC32:              crc,
		UncompressedSize:   uncompSize,
		CompressedSize:     compSize,
		Method:             Method(method),
		GeneralPurposeFlag: flag,
		ModTime:            fromDOSDateTime(date, timeWord),
		Comment:            string(commentBytes),
		Extras:             parseExtras(extraBytes),
		localHeaderOffset:  localHeaderOffset,
	}
	applyNTFSExtra(e)
	return e, total, nil
}

func parseExtras(buf []byte) []Extra {
	var out []Extra
	for len(buf) >= 4 {
		sign := binary.LittleEndian.Uint16(buf[0:2])
		size := int(binary.LittleEndian.Uint16(buf[2:4]))
		if 4+size > len(buf) {
			break
		}
		out = append(out, Extra{Sign: sign, Data: append([]byte(nil), buf[4:4+size]...)})
		buf = buf[4+size:]
	}
	return out
}

// applyNTFSExtra parses the NTFS extra (signature 0x000A) into
// Create/Access/ModTime, per spec.md §4.C.
func applyNTFSExtra(e *Entry) {
	for _, ex := range e.Extras {
		if ex.Sign != ntfsExtraSign {
			continue
		}
		data := ex.Data
		if len(data) < 4 {
			continue
		}
		data = data[4:] // skip reserved
		for len(data) >= 4 {
			tag := binary.LittleEndian.Uint16(data[0:2])
			size := int(binary.LittleEndian.Uint16(data[2:4]))
			if 4+size > len(data) {
				break
			}
			if tag == 1 && size >= 24 {
				body := data[4:]
				e.ModTime = ntfsTimeToUnix(binary.LittleEndian.Uint64(body[0:8]))
				e.AccessTime = ntfsTimeToUnix(binary.LittleEndian.Uint64(body[8:16]))
				e.CreateTime = ntfsTimeToUnix(binary.LittleEndian.Uint64(body[16:24]))
			}
			data = data[4+size:]
		}
	}
}

// resolveLocalHeader follows the entry's relative-offset field to the local
// file header to compute the absolute data offset. Per spec.md's known
// peculiarity, sizes always come from the central directory even when the
// local header carries zeros because of a trailing data descriptor
// (general-purpose bit 3).
func (r *Reader) resolveLocalHeader(e *Entry) error {
	buf, err := r.readAt(int64(e.localHeaderOffset), 30)
	if err != nil {
		return err
	}
	if binary.LittleEndian.Uint32(buf) != signLocalFileHeader {
		return errs.New(errs.KindCorrupt, "archive.Reader", fmt.Errorf("entry %q: bad local file header signature", e.Name))
	}
	nameLen := int(binary.LittleEndian.Uint16(buf[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(buf[28:30]))
	e.dataOffset = int64(e.localHeaderOffset) + 30 + int64(nameLen) + int64(extraLen)
	e.encrypted = e.Encrypted()
	return nil
}

// Comment returns the whole-archive comment from the end-of-central-
// directory record.
func (r *Reader) Comment() string { return r.comment }

// Entries returns every entry in central-directory order.
func (r *Reader) Entries() []*Entry { return r.entries }

// FindOptions controls FindEntry's name comparison.
type FindOptions struct {
	IgnoreCase bool
	IgnorePath bool
}

// FindEntry performs the linear scan spec.md's §4.C documents: comparison
// interprets the stored name bytes as UTF-8 iff general-purpose bit 11 is
// set on that entry, else as the host OEM encoding (CP437 here).
func (r *Reader) FindEntry(name string, opts FindOptions) *Entry {
	target := name
	if opts.IgnorePath {
		target = basePath(target)
	}
	if opts.IgnoreCase {
		target = lowerASCII(target)
	}
	for _, e := range r.entries {
		candidate := e.Name
		if opts.IgnorePath {
			candidate = basePath(candidate)
		}
		if opts.IgnoreCase {
			candidate = lowerASCII(candidate)
		}
		if candidate == target {
			return e
		}
	}
	return nil
}

func basePath(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// Extract decompresses (and, if needed, decrypts) an entry's payload. A
// wrong password is reported as errs.ErrBadPassword; any structural
// problem (size or CRC mismatch, truncated stream) is errs.ErrCorrupt.
func (r *Reader) Extract(e *Entry, password string) ([]byte, error) {
	payload, err := r.readAt(e.dataOffset, int(e.CompressedSize))
	if err != nil {
		return nil, err
	}

	if e.encrypted {
		if len(payload) < cryptHeaderSize {
			return nil, errs.New(errs.KindCorrupt, "archive.Reader.Extract", fmt.Errorf("entry %q: truncated crypto header", e.Name))
		}
		var hdr [cryptHeaderSize]byte
		copy(hdr[:], payload[:cryptHeaderSize])
		cipher := newZipCipher(password)
		lastByte := cipher.consumeCryptHeader(hdr)
		if lastByte != byte(e.CRC32>>24) {
			return nil, errs.New(errs.KindBadPassword, "archive.Reader.Extract", fmt.Errorf("entry %q", e.Name))
		}
		payload = payload[cryptHeaderSize:]
		cipher.decode(payload)
	}

	var out []byte
	switch e.Method {
	case MethodStore:
		out = payload
	case MethodDeflate:
		fr := flate.NewReader(bytes.NewReader(payload))
		defer fr.Close()
		decoded, err := io.ReadAll(fr)
		if err != nil {
			return nil, errs.New(errs.KindCorrupt, "archive.Reader.Extract", err)
		}
		out = decoded
	default:
		return nil, errs.New(errs.KindCorrupt, "archive.Reader.Extract", fmt.Errorf("entry %q: unsupported method %d", e.Name, e.Method))
	}

	if uint32(len(out)) != e.UncompressedSize {
		return nil, errs.New(errs.KindCorrupt, "archive.Reader.Extract", fmt.Errorf("entry %q: decoded %d bytes, want %d", e.Name, len(out), e.UncompressedSize))
	}
	if crc32.ChecksumIEEE(out) != e.CRC32 {
		return nil, errs.New(errs.KindCorrupt, "archive.Reader.Extract", fmt.Errorf("entry %q: CRC mismatch", e.Name))
	}
	if r.Logger != nil {
		r.Logger.LogZipf(debug.LogLevelDebug, "extracted entry %q (%d bytes)", e.Name, len(out))
	}
	return out, nil
}
