package archive

import (
	"golang.org/x/text/encoding/charmap"
)

// encodeName returns the on-wire bytes for name given whether the entry is
// flagged UTF-8. Non-UTF-8 entries are written in the classic PKZIP "OEM"
// code page (CP437), the byte encoding most third-party unzip tools still
// assume for unflagged entries.
func encodeName(name string, utf8 bool) ([]byte, error) {
	if utf8 {
		return []byte(name), nil
	}
	return charmap.CodePage437.NewEncoder().Bytes([]byte(name))
}

// decodeName is the inverse of encodeName, used by findEntry's non-UTF-8
// comparison path and by Entry.Name population on read.
func decodeName(raw []byte, utf8 bool) (string, error) {
	if utf8 {
		return string(raw), nil
	}
	out, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
