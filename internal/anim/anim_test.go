package anim

import "testing"

func buildSampleCurve(t *testing.T) *Curve {
	t.Helper()
	c := New()
	segs := []Segment{
		{Name: "idle", Duration: 10, Layers: []Layer{{Sprite: "idle_0", Label: "base"}}},
		{Name: "walk", Duration: 20, Layers: []Layer{{Sprite: "walk_0", Label: "base"}}},
		{Name: "attack", Duration: 5, Layers: []Layer{{Sprite: "attack_0", Label: "base", Command: "blend=screen"}}},
	}
	for _, s := range segs {
		if err := c.AddSegment(s); err != nil {
			t.Fatalf("AddSegment: %v", err)
		}
	}
	return c
}

func TestDurationSumMatchesFrameByPage(t *testing.T) {
	c := buildSampleCurve(t)
	total := 0
	for i := 0; i < c.SegmentCount(); i++ {
		total += c.GetSegmentDuration(i)
	}
	if got := c.GetFrameByPage(c.SegmentCount()); got != total {
		t.Fatalf("GetFrameByPage(n) = %d, want sum of durations %d", got, total)
	}
}

func TestSegmentIndexByFrameMatchesCumulativeBounds(t *testing.T) {
	c := buildSampleCurve(t)
	cumulative := []int{0}
	for i := 0; i < c.SegmentCount(); i++ {
		cumulative = append(cumulative, cumulative[len(cumulative)-1]+c.GetSegmentDuration(i))
	}

	for f := 0; f < c.Duration(); f++ {
		k := c.GetSegmentIndexByFrame(float64(f))
		if !(cumulative[k] <= f && f < cumulative[k+1]) {
			t.Fatalf("frame %d -> segment %d violates cumulative[%d]=%d <= f < cumulative[%d]=%d",
				f, k, k, cumulative[k], k+1, cumulative[k+1])
		}
	}
}

func TestGetFrameByLabel(t *testing.T) {
	c := buildSampleCurve(t)
	if f := c.GetFrameByLabel("walk"); f != 10 {
		t.Fatalf("GetFrameByLabel(walk) = %d, want 10", f)
	}
	if f := c.GetFrameByLabel("attack"); f != 30 {
		t.Fatalf("GetFrameByLabel(attack) = %d, want 30", f)
	}
	if f := c.GetFrameByLabel("missing"); f != -1 {
		t.Fatalf("GetFrameByLabel(missing) = %d, want -1", f)
	}
}

func TestGetPageByFrameClampsWhenAllowed(t *testing.T) {
	c := buildSampleCurve(t)
	if p := c.GetPageByFrame(1000, true); p != c.SegmentCount()-1 {
		t.Fatalf("GetPageByFrame(over, true) = %d, want last segment %d", p, c.SegmentCount()-1)
	}
	if p := c.GetPageByFrame(1000, false); p != -1 {
		t.Fatalf("GetPageByFrame(over, false) = %d, want -1", p)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	c := buildSampleCurve(t)
	c.segments[2].UserParameters = map[string]string{"hitbox": "wide"}

	text := c.Export()
	restored, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if restored.SegmentCount() != c.SegmentCount() {
		t.Fatalf("restored segment count = %d, want %d", restored.SegmentCount(), c.SegmentCount())
	}
	if restored.Duration() != c.Duration() {
		t.Fatalf("restored duration = %d, want %d", restored.Duration(), c.Duration())
	}
	attack := restored.Segment(2)
	if attack.Name != "attack" || attack.Layers[0].Command != "blend=screen" {
		t.Fatalf("restored attack segment = %+v", attack)
	}
	if attack.UserParameters["hitbox"] != "wide" {
		t.Fatalf("restored user parameter missing: %+v", attack.UserParameters)
	}
}

func TestAddSegmentRejectsNegativeDuration(t *testing.T) {
	c := New()
	if err := c.AddSegment(Segment{Name: "bad", Duration: -1}); err == nil {
		t.Fatalf("expected an error for a negative duration segment")
	}
}
