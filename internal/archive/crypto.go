package archive

import "hash/crc32"

// zipCipher implements the classic PKZIP stream cipher: three 32-bit state
// words, seeded from the password and advanced by every plaintext byte that
// passes through it.
type zipCipher struct {
	keys [3]uint32
}

func newZipCipher(password string) *zipCipher {
	c := &zipCipher{keys: [3]uint32{0x12345678, 0x23456789, 0x34567890}}
	for i := 0; i < len(password); i++ {
		c.update(password[i])
	}
	return c
}

func (c *zipCipher) update(b byte) {
	c.keys[0] = crc32.Update(c.keys[0], crc32.IEEETable, []byte{b})
	c.keys[1] += c.keys[0] & 0xFF
	c.keys[1] = c.keys[1]*134775813 + 1
	c.keys[2] = crc32.Update(c.keys[2], crc32.IEEETable, []byte{byte(c.keys[1] >> 24)})
}

func (c *zipCipher) next() byte {
	tmp := uint16(c.keys[2]&0xFFFF) | 2
	return byte((uint32(tmp) * uint32(tmp^1)) >> 8)
}

func (c *zipCipher) encodeByte(v byte) byte {
	t := c.next()
	c.update(v)
	return t ^ v
}

func (c *zipCipher) decodeByte(v byte) byte {
	v ^= c.next()
	c.update(v)
	return v
}

func (c *zipCipher) encode(data []byte) {
	for i, b := range data {
		data[i] = c.encodeByte(b)
	}
}

func (c *zipCipher) decode(data []byte) {
	for i, b := range data {
		data[i] = c.decodeByte(b)
	}
}

const cryptHeaderSize = 12

// buildCryptHeader produces the 12-byte PKZIP crypto header: 11 bytes from
// rnd (caller-supplied randomness) followed by the high byte of the entry's
// CRC-32, all run through the cipher, leaving the cipher advanced and ready
// to encode the compressed payload that follows.
func (c *zipCipher) buildCryptHeader(rnd [cryptHeaderSize - 1]byte, crc32HiByte byte) [cryptHeaderSize]byte {
	var hdr [cryptHeaderSize]byte
	copy(hdr[:cryptHeaderSize-1], rnd[:])
	hdr[cryptHeaderSize-1] = crc32HiByte
	c.encode(hdr[:])
	return hdr
}

// consumeCryptHeader decrypts the 12-byte header read from the stream,
// advancing the cipher so it is ready to decode the payload. It returns the
// header's final decoded byte; Extract accepts the password only when that
// byte equals the high byte of the entry's recorded CRC-32.
func (c *zipCipher) consumeCryptHeader(hdr [cryptHeaderSize]byte) byte {
	buf := hdr
	c.decode(buf[:])
	return buf[cryptHeaderSize-1]
}
