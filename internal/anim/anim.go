// Package anim implements AnimationCurve: a segmented, per-frame sequence
// of sprite/label assignments and opaque user parameters, with lookup by
// frame number or by named label.
package anim

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is a contiguous run of frames over which the layer assignments
// and user parameters are constant.
type Segment struct {
	Name     string
	Duration int
	// Layers holds one entry per rendered layer: sprite name, an optional
	// label, and an opaque command string (e.g. "blend=screen") whose
	// interpretation is left to the renderer, per spec.md's documented
	// "treat as opaque until the engine's renderer contract clarifies them".
	Layers []Layer
	// UserParameters are opaque key/value strings attached to the segment.
	UserParameters map[string]string
}

// Layer is one rendered layer within a segment.
type Layer struct {
	Sprite  string
	Label   string
	Command string
}

// Curve is an ordered sequence of Segments plus their cumulative duration.
type Curve struct {
	segments   []Segment
	timeLength int
}

// New returns an empty curve.
func New() *Curve { return &Curve{} }

// AddSegment appends seg, accumulating its duration into the curve's total
// length. A negative duration is rejected; nothing else about seg is checked.
func (c *Curve) AddSegment(seg Segment) error {
	if seg.Duration < 0 {
		return fmt.Errorf("anim: segment %q has negative duration %d", seg.Name, seg.Duration)
	}
	c.segments = append(c.segments, seg)
	c.timeLength += seg.Duration
	return nil
}

func (c *Curve) SegmentCount() int   { return len(c.segments) }
func (c *Curve) Duration() int       { return c.timeLength }
func (c *Curve) Segments() []Segment { return c.segments }

// Segment returns the segment at index, or nil if out of range.
func (c *Curve) Segment(index int) *Segment {
	if index < 0 || index >= len(c.segments) {
		return nil
	}
	return &c.segments[index]
}

// GetSegmentDuration returns segment index's duration, or 0 if out of range.
func (c *Curve) GetSegmentDuration(index int) int {
	if s := c.Segment(index); s != nil {
		return s.Duration
	}
	return 0
}

// GetSegmentIndexByFrame finds the segment containing framef, truncated
// toward zero. Frames before the curve start resolve to segment 0; frames
// past the end resolve to the last segment.
func (c *Curve) GetSegmentIndexByFrame(framef float64) int {
	frame := int(framef)
	if frame < 0 {
		return 0
	}
	count := c.SegmentCount()
	if count == 0 {
		return 0
	}
	pos := 0
	for i := 0; i < count; i++ {
		dur := c.GetSegmentDuration(i)
		if frame < pos+dur {
			return i
		}
		pos += dur
	}
	return count - 1
}

// GetFrameByLabel returns the starting frame of the first segment named
// label, or -1 if no segment has that name.
func (c *Curve) GetFrameByLabel(label string) int {
	t := 0
	for _, seg := range c.segments {
		if seg.Name == label {
			return t
		}
		t += seg.Duration
	}
	return -1
}

// GetFrameByPage returns the starting frame of segment index page, the
// sum of every earlier segment's duration. Returns -1 if page is out of
// range (page itself may equal SegmentCount() to get the total duration).
func (c *Curve) GetFrameByPage(page int) int {
	if page < 0 {
		return -1
	}
	frames := 0
	for i := 0; i < page; i++ {
		s := c.Segment(i)
		if s == nil {
			return -1
		}
		frames += s.Duration
	}
	return frames
}

// GetPageByFrame finds which segment index owns frame, optionally clamping
// to the last segment when frame runs past the curve's total duration.
func (c *Curve) GetPageByFrame(frame int, allowOverFrame bool) int {
	if frame < 0 {
		return -1
	}
	fr := 0
	for i, seg := range c.segments {
		fr += seg.Duration
		if frame < fr {
			return i
		}
	}
	if allowOverFrame {
		return len(c.segments) - 1
	}
	return -1
}

// UserParameters returns the user parameters of the segment active at
// frame, or nil if frame resolves to no segment.
func (c *Curve) UserParameters(frame float64) map[string]string {
	s := c.Segment(c.GetSegmentIndexByFrame(frame))
	if s == nil {
		return nil
	}
	return s.UserParameters
}

// Export renders the curve as a plain-text listing, grouped by segment,
// suitable for round-tripping through Import or hand inspection.
func (c *Curve) Export() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TimeLength: %d\n", c.timeLength)
	fmt.Fprintf(&b, "NumSegments: %d\n", len(c.segments))
	for i, seg := range c.segments {
		fmt.Fprintf(&b, "Segment[%d] {\n", i)
		fmt.Fprintf(&b, "\tName: %s\n", seg.Name)
		fmt.Fprintf(&b, "\tDur: %d\n", seg.Duration)
		for j, l := range seg.Layers {
			fmt.Fprintf(&b, "\tLayer[%d]\n", j)
			fmt.Fprintf(&b, "\t\tSprite: %s\n", l.Sprite)
			fmt.Fprintf(&b, "\t\tLabel: %s\n", l.Label)
			fmt.Fprintf(&b, "\t\tCommand: %s\n", l.Command)
		}
		if len(seg.UserParameters) > 0 {
			fmt.Fprintf(&b, "\tParams {\n")
			for k, v := range seg.UserParameters {
				fmt.Fprintf(&b, "\t\t%s: %s\n", k, v)
			}
			fmt.Fprintf(&b, "\t}\n")
		}
		fmt.Fprintf(&b, "}\n")
	}
	return b.String()
}

// Import parses the textual format Export produces back into a Curve.
func Import(text string) (*Curve, error) {
	c := New()
	lines := strings.Split(text, "\n")
	var cur *Segment
	var curLayer *Layer
	inParams := false

	flush := func() error {
		if cur != nil {
			if err := c.AddSegment(*cur); err != nil {
				return err
			}
			cur = nil
		}
		return nil
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "TimeLength:") || strings.HasPrefix(trimmed, "NumSegments:"):
			continue
		case strings.HasPrefix(trimmed, "Segment["):
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &Segment{UserParameters: map[string]string{}}
		case trimmed == "}":
			inParams = false
			curLayer = nil
		case trimmed == "Params {":
			inParams = true
		case strings.HasPrefix(trimmed, "Name:"):
			cur.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Name:"))
		case strings.HasPrefix(trimmed, "Dur:"):
			v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "Dur:")))
			if err != nil {
				return nil, fmt.Errorf("anim: bad duration %q: %w", trimmed, err)
			}
			cur.Duration = v
		case strings.HasPrefix(trimmed, "Layer["):
			cur.Layers = append(cur.Layers, Layer{})
			curLayer = &cur.Layers[len(cur.Layers)-1]
		case strings.HasPrefix(trimmed, "Sprite:") && curLayer != nil:
			curLayer.Sprite = strings.TrimSpace(strings.TrimPrefix(trimmed, "Sprite:"))
		case strings.HasPrefix(trimmed, "Label:") && curLayer != nil:
			curLayer.Label = strings.TrimSpace(strings.TrimPrefix(trimmed, "Label:"))
		case strings.HasPrefix(trimmed, "Command:") && curLayer != nil:
			curLayer.Command = strings.TrimSpace(strings.TrimPrefix(trimmed, "Command:"))
		case inParams && cur != nil:
			if idx := strings.Index(trimmed, ":"); idx >= 0 {
				k := strings.TrimSpace(trimmed[:idx])
				v := strings.TrimSpace(trimmed[idx+1:])
				cur.UserParameters[k] = v
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return c, nil
}
