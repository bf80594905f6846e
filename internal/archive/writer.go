package archive

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

// FileStamp groups the three timestamps an entry may carry. The NTFS
// file-times extra is omitted only when all three are zero.
type FileStamp struct {
	ModTime    time.Time
	CreateTime time.Time
	AccessTime time.Time
}

type pendingEntry struct {
	Entry
	localHeaderOffset uint32
}

// Writer builds a ZIP archive, writing local file entries as they are
// added and the central directory + end record on Close.
type Writer struct {
	w    io.Writer
	pos  uint32
	done []pendingEntry

	level    int // -1..9, like flate.DefaultCompression..flate.BestCompression
	password string
	comment  string

	Logger *debug.Logger
}

// NewWriter opens a writer over w. Defaults: level=-1 (flate default),
// no password, no comment — set with SetCompressLevel/SetPassword/
// SetZipComment before AddEntry.
func NewWriter(w io.Writer, logger *debug.Logger) *Writer {
	return &Writer{w: w, level: flate.DefaultCompression, Logger: logger}
}

// SetCompressLevel sets the Deflate level for subsequently added entries.
// 0 disables compression (method=store); -1 requests the default level;
// 1..9 request fastest..best compression, matching compress/flate's scale.
func (zw *Writer) SetCompressLevel(level int) {
	zw.level = level
}

// SetPassword sets the PKZIP classic-crypto password for subsequently
// added entries. Empty disables encryption.
func (zw *Writer) SetPassword(password string) {
	zw.password = password
}

// SetZipComment sets the whole-archive comment written in the
// end-of-central-directory record.
func (zw *Writer) SetZipComment(comment string) {
	zw.comment = comment
}

func (zw *Writer) write(b []byte) error {
	n, err := zw.w.Write(b)
	zw.pos += uint32(n)
	return err
}

// AddEntry compresses data and appends it as a local file header + payload,
// recording the entry for the central directory written by Close.
func (zw *Writer) AddEntry(name string, data []byte, stamp FileStamp) error {
	if name == "" {
		panic("archive: empty entry name")
	}
	if len(name) > 128 {
		panic(fmt.Sprintf("archive: entry name %q exceeds 128 bytes", name))
	}

	crc := crc32.ChecksumIEEE(data)

	var method Method
	var compressed []byte
	if zw.level == 0 {
		method = MethodStore
		compressed = data
	} else {
		method = MethodDeflate
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, zw.level)
		if err != nil {
			return errs.New(errs.KindCorrupt, "archive.Writer.AddEntry", err)
		}
		if _, err := fw.Write(data); err != nil {
			return errs.New(errs.KindCorrupt, "archive.Writer.AddEntry", err)
		}
		if err := fw.Close(); err != nil {
			return errs.New(errs.KindCorrupt, "archive.Writer.AddEntry", err)
		}
		compressed = buf.Bytes()
	}

	var cryptHeader []byte
	if zw.password != "" {
		var rnd [cryptHeaderSize - 1]byte
		if _, err := rand.Read(rnd[:]); err != nil {
			return errs.New(errs.KindCorrupt, "archive.Writer.AddEntry", err)
		}
		cipher := newZipCipher(zw.password)
		hdr := cipher.buildCryptHeader(rnd, byte(crc>>24))
		cryptHeader = hdr[:]
		cipher.encode(compressed)
	}

	flag := uint16(flagUTF8FileName)
	if zw.password != "" {
		flag |= flagEncrypted
	}

	nameBytes, err := encodeName(name, true)
	if err != nil {
		return errs.New(errs.KindCorrupt, "archive.Writer.AddEntry", err)
	}

	extras := ntfsExtraBytes(stamp)

	storedSize := uint32(len(cryptHeader) + len(compressed))
	date, timeWord := dosDateTime(stamp.ModTime)

	localHeaderOffset := zw.pos

	var hdr bytes.Buffer
	putU32(&hdr, signLocalFileHeader)
	putU16(&hdr, 20) // version needed to extract
	putU16(&hdr, flag)
	putU16(&hdr, uint16(method))
	putU16(&hdr, timeWord)
	putU16(&hdr, date)
	putU32(&hdr, crc)
	putU32(&hdr, storedSize)
	putU32(&hdr, uint32(len(data)))
	putU16(&hdr, uint16(len(nameBytes)))
	putU16(&hdr, uint16(len(extras)))
	if err := zw.write(hdr.Bytes()); err != nil {
		return err
	}
	if err := zw.write(nameBytes); err != nil {
		return err
	}
	if err := zw.write(extras); err != nil {
		return err
	}
	if err := zw.write(cryptHeader); err != nil {
		return err
	}
	if err := zw.write(compressed); err != nil {
		return err
	}

	zw.done = append(zw.done, pendingEntry{
		Entry: Entry{
			Name:               name,
			CRC32:              crc,
			UncompressedSize:   uint32(len(data)),
			CompressedSize:     storedSize,
			Method:             method,
			GeneralPurposeFlag: flag,
			ModTime:            stamp.ModTime,
			CreateTime:         stamp.CreateTime,
			AccessTime:         stamp.AccessTime,
		},
		localHeaderOffset: localHeaderOffset,
	})

	if zw.Logger != nil {
		zw.Logger.LogZipf(debug.LogLevelDebug, "added entry %q (%d -> %d bytes, method=%d, encrypted=%v)",
			name, len(data), storedSize, method, zw.password != "")
	}
	return nil
}

// Close writes the central directory and end-of-central-directory record.
// Must be called exactly once after all entries have been added.
func (zw *Writer) Close() error {
	cdStart := zw.pos
	for _, pe := range zw.done {
		nameBytes, err := encodeName(pe.Name, true)
		if err != nil {
			return errs.New(errs.KindCorrupt, "archive.Writer.Close", err)
		}
		extras := ntfsExtraBytes(FileStamp{ModTime: pe.ModTime, CreateTime: pe.CreateTime, AccessTime: pe.AccessTime})
		date, timeWord := dosDateTime(pe.ModTime)

		var hdr bytes.Buffer
		putU32(&hdr, signCentralDirHeader)
		putU16(&hdr, 20) // version made by
		putU16(&hdr, 20) // version needed
		putU16(&hdr, pe.GeneralPurposeFlag)
		putU16(&hdr, uint16(pe.Method))
		putU16(&hdr, timeWord)
		putU16(&hdr, date)
		putU32(&hdr, pe.CRC32)
		putU32(&hdr, pe.CompressedSize)
		putU32(&hdr, pe.UncompressedSize)
		putU16(&hdr, uint16(len(nameBytes)))
		putU16(&hdr, uint16(len(extras)))
		putU16(&hdr, 0) // comment length
		putU16(&hdr, 0) // disk number start
		putU16(&hdr, 0) // internal attrs
		putU32(&hdr, 0) // external attrs
		putU32(&hdr, pe.localHeaderOffset)
		if err := zw.write(hdr.Bytes()); err != nil {
			return err
		}
		if err := zw.write(nameBytes); err != nil {
			return err
		}
		if err := zw.write(extras); err != nil {
			return err
		}
	}
	cdSize := zw.pos - cdStart

	commentBytes := []byte(zw.comment)
	var end bytes.Buffer
	putU32(&end, signEndOfCentralDir)
	putU16(&end, 0) // disk number
	putU16(&end, 0) // disk with central dir start
	putU16(&end, uint16(len(zw.done)))
	putU16(&end, uint16(len(zw.done)))
	putU32(&end, cdSize)
	putU32(&end, cdStart)
	putU16(&end, uint16(len(commentBytes)))
	if err := zw.write(end.Bytes()); err != nil {
		return err
	}
	if err := zw.write(commentBytes); err != nil {
		return err
	}

	if zw.Logger != nil {
		zw.Logger.LogZipf(debug.LogLevelInfo, "closed archive: %d entries, %d bytes total", len(zw.done), zw.pos)
	}
	return nil
}

func ntfsExtraBytes(stamp FileStamp) []byte {
	if stamp.CreateTime.IsZero() && stamp.AccessTime.IsZero() && stamp.ModTime.IsZero() {
		return nil
	}
	var body bytes.Buffer
	putU32(&body, 0) // reserved
	putU16(&body, 1) // attribute tag 1 = file times
	putU16(&body, 24)
	putU64(&body, unixToNTFSTime(stamp.ModTime))
	putU64(&body, unixToNTFSTime(stamp.AccessTime))
	putU64(&body, unixToNTFSTime(stamp.CreateTime))

	var extra bytes.Buffer
	putU16(&extra, ntfsExtraSign)
	putU16(&extra, uint16(body.Len()))
	extra.Write(body.Bytes())
	return extra.Bytes()
}

func putU16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func putU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func putU64(b *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}
