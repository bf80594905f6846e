package chunked

import "testing"

func TestRoundTripScalarsAndOpenChunk(t *testing.T) {
	w := NewWriter(nil)
	w.WriteU16(0x1000, 0x2019)
	w.WriteU32(0x1001, 0xDEADBEEF)
	w.WriteString(0x1002, "HELLO WOROLD!")
	w.BeginChunk(0x1003)
	w.WriteU8(0x2000, 'a')
	w.WriteU8(0x2001, 'b')
	w.WriteU8(0x2002, 'c')
	w.EndChunk()
	buf := w.Finish()

	r := NewReader(buf, nil)
	if v, err := r.ReadU16(0x1000); err != nil || v != 0x2019 {
		t.Fatalf("ReadU16 = %d, %v, want 0x2019", v, err)
	}
	if v, err := r.ReadU32(0x1001); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %x, %v, want 0xDEADBEEF", v, err)
	}
	if v, err := r.ReadString(0x1002); err != nil || v != "HELLO WOROLD!" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if err := r.OpenChunk(0x1003); err != nil {
		t.Fatalf("OpenChunk: %v", err)
	}
	for _, want := range []struct {
		id  uint16
		val uint8
	}{{0x2000, 'a'}, {0x2001, 'b'}, {0x2002, 'c'}} {
		got, err := r.ReadU8(want.id)
		if err != nil || got != want.val {
			t.Fatalf("ReadU8(0x%04X) = %v, %v, want %v", want.id, got, err, want.val)
		}
	}
	if err := r.CloseChunk(); err != nil {
		t.Fatalf("CloseChunk: %v", err)
	}
	if !r.Eof() {
		t.Fatalf("expected EOF after closing chunk")
	}
}

func TestCloseChunkDetectsShortRead(t *testing.T) {
	w := NewWriter(nil)
	w.BeginChunk(0x10)
	w.WriteU8(0x11, 1)
	w.WriteU8(0x12, 2)
	w.EndChunk()
	buf := w.Finish()

	r := NewReader(buf, nil)
	if err := r.OpenChunk(0x10); err != nil {
		t.Fatalf("OpenChunk: %v", err)
	}
	if _, err := r.ReadU8(0x11); err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	// Deliberately skip the second child chunk before closing.
	if err := r.CloseChunk(); err == nil {
		t.Fatalf("expected CloseChunk to detect the unread child chunk")
	}
}

func TestOpenChunkIDMismatch(t *testing.T) {
	w := NewWriter(nil)
	w.WriteU8(0x01, 5)
	buf := w.Finish()

	r := NewReader(buf, nil)
	if err := r.OpenChunk(0x02); err == nil {
		t.Fatalf("expected id mismatch error")
	}
}

func TestFinishPanicsOnUnclosedChunk(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unclosed chunk")
		}
	}()
	w := NewWriter(nil)
	w.BeginChunk(0x01)
	w.Finish()
}
