package archive

import (
	"bytes"
	"testing"
)

func buildPlainArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	w.SetZipComment("COMMENT")
	entries := map[string]string{
		"a.txt":     "AAA\n",
		"b.txt":     "BBB\n",
		"c.txt":     "CCC\n",
		"sub/d.txt": "DDD\n",
	}
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "sub/d.txt"} {
		if err := w.AddEntry(name, []byte(entries[name]), FileStamp{}); err != nil {
			t.Fatalf("AddEntry(%s): %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestPlainArchiveRoundTrip(t *testing.T) {
	data := buildPlainArchive(t)
	r, err := Open(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Comment() != "COMMENT" {
		t.Fatalf("Comment = %q, want COMMENT", r.Comment())
	}

	e := r.FindEntry("sub/d.txt", FindOptions{})
	if e == nil {
		t.Fatalf("sub/d.txt not found")
	}
	got, err := r.Extract(e, "")
	if err != nil || string(got) != "DDD\n" {
		t.Fatalf("Extract(sub/d.txt) = %q, %v", got, err)
	}

	e2 := r.FindEntry("d.txt", FindOptions{IgnorePath: true})
	if e2 == nil {
		t.Fatalf("d.txt not found with IgnorePath")
	}
	got2, err := r.Extract(e2, "")
	if err != nil || string(got2) != "DDD\n" {
		t.Fatalf("Extract(d.txt, ignore_path) = %q, %v", got2, err)
	}
}

func TestPerEntryPasswords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	type spec struct{ name, data, pass string }
	specs := []spec{
		{"a.txt", "AAA\n", "passa"},
		{"b.txt", "BBB\n", "passb"},
		{"c.txt", "CCC\n", "passc"},
	}
	for _, s := range specs {
		w.SetPassword(s.pass)
		if err := w.AddEntry(s.name, []byte(s.data), FileStamp{}); err != nil {
			t.Fatalf("AddEntry(%s): %v", s.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, s := range specs {
		e := r.FindEntry(s.name, FindOptions{})
		if e == nil {
			t.Fatalf("%s not found", s.name)
		}
		if _, err := r.Extract(e, "wrong-password"); err == nil {
			t.Fatalf("%s: expected bad_password error with wrong password", s.name)
		}
		got, err := r.Extract(e, s.pass)
		if err != nil || string(got) != s.data {
			t.Fatalf("Extract(%s, %s) = %q, %v", s.name, s.pass, got, err)
		}
	}
}

func TestExtractDetectsCRCCorruption(t *testing.T) {
	data := buildPlainArchive(t)
	r, err := Open(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e := r.FindEntry("a.txt", FindOptions{})
	e.CRC32 ^= 0xFFFFFFFF // corrupt in-memory after indexing
	if _, err := r.Extract(e, ""); err == nil {
		t.Fatalf("expected CRC mismatch error")
	}
}

func TestStoreMethodRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	w.SetCompressLevel(0)
	if err := w.AddEntry("raw.bin", []byte("not compressed"), FileStamp{}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e := r.FindEntry("raw.bin", FindOptions{})
	if e.Method != MethodStore {
		t.Fatalf("Method = %v, want store", e.Method)
	}
	got, err := r.Extract(e, "")
	if err != nil || string(got) != "not compressed" {
		t.Fatalf("Extract = %q, %v", got, err)
	}
}
