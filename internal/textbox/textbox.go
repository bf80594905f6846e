// Package textbox composes attributed runs of text into a positioned
// character sequence and an emittable vertex mesh, pulling glyphs from a
// glyphatlas.Atlas.
package textbox

import (
	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
)

const (
	parentNone = -1
	parentSelf = -2
)

// blankAdvanceFactor shrinks the advance of a plain space relative to the
// current font size, matching the source's BLANK_ADVANCE_FACTOR.
const blankAdvanceFactor = 0.3

// Vec2 is a 2D float position.
type Vec2 struct{ X, Y float64 }

// Attr is the font/style state applied to characters as they're appended.
// The box keeps a stack of these, pushed with PushAttr and restored with
// PopAttr.
type Attr struct {
	Font          string
	SizeTenths    int
	Style         glyphatlas.Style
	PrimaryARGB   uint32
	SecondaryARGB uint32
	Pitch         float64
	UserData      int
}

// Kerner supplies the kerning advance between two adjacent runes of a font,
// used when kerning is enabled. internal/rasterfont.FaceRegistry implements
// this.
type Kerner interface {
	Kern(fontID string, prev, cur rune) int
}

// Char is one appended, positioned character.
type Char struct {
	Code     rune
	Attr     Attr
	Glyph    glyphatlas.Entry
	Pos      Vec2 // absolute, or relative to Parent's Pos if Parent >= 0
	Parent   int  // parentNone, parentSelf (this char IS a group anchor), or an index
	Progress float32
}

// Vertex is one corner of a glyph quad, ready for a triangle-list mesh.
type Vertex struct {
	X, Y          float64
	U, V          float32
	R, G, B, A    float32
}

// TextBox accumulates Chars and can emit them as a textured quad mesh.
type TextBox struct {
	atlas  *glyphatlas.Atlas
	kerner Kerner
	logger *debug.Logger

	chars []Char

	curAttr   Attr
	attrStack []Attr

	curX, curY   float64
	lineHeight   float64
	rowCount     int
	curParent    int
	curLineStart int

	autoWrapWidth float64
	kerningOn     bool

	cursorStack []Vec2
}

// New creates an empty text box bound to atlas.
func New(atlas *glyphatlas.Atlas, kerner Kerner, logger *debug.Logger) *TextBox {
	return &TextBox{
		atlas:        atlas,
		kerner:       kerner,
		logger:       logger,
		curParent:    parentNone,
		curLineStart: 0,
		lineHeight:   1,
		kerningOn:    true,
	}
}

func (b *TextBox) SetFont(font string)             { b.curAttr.Font = font }
func (b *TextBox) SetFontSizeTenths(size int)       { b.curAttr.SizeTenths = size }
func (b *TextBox) SetFontStyle(s glyphatlas.Style)  { b.curAttr.Style = s }
func (b *TextBox) SetFontPitch(pitch float64)       { b.curAttr.Pitch = pitch }
func (b *TextBox) SetGlyphColors(primary, secondary uint32) {
	b.curAttr.PrimaryARGB = primary
	b.curAttr.SecondaryARGB = secondary
}
func (b *TextBox) SetUserData(v int)             { b.curAttr.UserData = v }
func (b *TextBox) SetLineHeight(h float64)       { b.lineHeight = h }
func (b *TextBox) SetKerningEnabled(on bool)     { b.kerningOn = on }
func (b *TextBox) SetAutoWrapWidth(w float64)    { b.autoWrapWidth = w }
func (b *TextBox) Chars() []Char                 { return b.chars }
func (b *TextBox) CharCount() int                { return len(b.chars) }

// PushAttr saves the current attribute state.
func (b *TextBox) PushAttr() { b.attrStack = append(b.attrStack, b.curAttr) }

// PopAttr restores the most recently pushed attribute state.
func (b *TextBox) PopAttr() {
	if len(b.attrStack) == 0 {
		return
	}
	b.curAttr = b.attrStack[len(b.attrStack)-1]
	b.attrStack = b.attrStack[:len(b.attrStack)-1]
}

func (b *TextBox) pushCursor() { b.cursorStack = append(b.cursorStack, Vec2{b.curX, b.curY}) }

func (b *TextBox) popCursor() {
	if len(b.cursorStack) == 0 {
		return
	}
	v := b.cursorStack[len(b.cursorStack)-1]
	b.cursorStack = b.cursorStack[:len(b.cursorStack)-1]
	b.curX, b.curY = v.X, v.Y
}

func (b *TextBox) setCursor(v Vec2) { b.curX, b.curY = v.X, v.Y }

// BeginGroup starts a group: an invisible anchor char is appended at the
// current cursor, and subsequent chars store positions relative to it.
// Groups never split across a wrap (see AddChar).
func (b *TextBox) BeginGroup() int {
	b.curParent = len(b.chars)
	b.chars = append(b.chars, Char{Pos: Vec2{b.curX, b.curY}, Parent: parentSelf})
	return b.curParent
}

// EndGroup closes the currently open group, if any.
func (b *TextBox) EndGroup() { b.curParent = parentNone }

// CharPos resolves index's absolute position, following its group anchor if
// grouped.
func (b *TextBox) CharPos(index int) Vec2 {
	c := b.chars[index]
	if c.Parent >= 0 {
		parent := b.chars[c.Parent]
		return Vec2{parent.Pos.X + c.Pos.X, parent.Pos.Y + c.Pos.Y}
	}
	return c.Pos
}

// newLine resets the cursor x to 0 and advances y by one line height.
func (b *TextBox) newLine() {
	b.curX = 0
	b.curY += b.lineHeight
	b.rowCount++
}

// AddString appends every rune of s; '\n' is treated as an explicit newline,
// everything else goes through AddChar.
func (b *TextBox) AddString(s string) error {
	for _, r := range s {
		if r == '\n' {
			b.newLine()
			continue
		}
		if err := b.AddChar(r); err != nil {
			return err
		}
	}
	return nil
}

// AddChar appends one codepoint under the current attribute state, applying
// kerning, auto-wrap, and kinsoku rules before placement.
func (b *TextBox) AddChar(code rune) error {
	if b.curAttr.Font == "" {
		return errs.New(errs.KindCorrupt, "textbox.AddChar", nil)
	}

	if b.kerningOn && len(b.chars) > 0 && b.kerner != nil {
		last := b.chars[len(b.chars)-1]
		if last.Pos.Y == b.curY && last.Attr.SizeTenths == b.curAttr.SizeTenths && last.Attr.Font == b.curAttr.Font {
			kern := b.kerner.Kern(b.curAttr.Font, last.Code, code)
			if kern != 0 {
				b.curX += float64(kern)
			}
		}
	}

	glyph, err := b.atlas.Get(glyphatlas.Key{
		FontID:        b.curAttr.Font,
		Codepoint:     code,
		SizeTenths:    b.curAttr.SizeTenths,
		Style:         b.curAttr.Style,
		WithAlpha:     true,
		PrimaryARGB:   b.curAttr.PrimaryARGB,
		SecondaryARGB: b.curAttr.SecondaryARGB,
	})
	if err != nil {
		return err
	}

	advance := float64(glyph.Advance)
	if code == ' ' {
		advance = float64(b.curAttr.SizeTenths) / 10 * blankAdvanceFactor
	}

	boundRight := b.curX + float64(glyph.Right)
	if b.autoWrapWidth > 0 && boundRight >= b.autoWrapWidth {
		b.tryWrap(code)
	}

	chr := Char{Code: code, Attr: b.curAttr, Glyph: *glyph, Parent: b.curParent}
	if chr.Parent >= 0 {
		parentPos := b.chars[chr.Parent].Pos
		chr.Pos = Vec2{b.curX - parentPos.X, b.curY - parentPos.Y}
	} else {
		chr.Pos = Vec2{b.curX, b.curY}
	}
	b.chars = append(b.chars, chr)

	b.curX += advance + b.curAttr.Pitch
	return nil
}

// tryWrap implements the three-tier wrap policy: group-atomic rewind, then
// blank-seeking, then kinsoku-gated newline.
func (b *TextBox) tryWrap(next rune) {
	if b.curParent >= 0 {
		if b.curLineStart == b.curParent {
			return // the group is already at the start of a line
		}
		parent := &b.chars[b.curParent]
		relX := b.curX - parent.Pos.X
		relY := b.curY - parent.Pos.Y

		b.curX, b.curY = parent.Pos.X, parent.Pos.Y
		b.newLine()
		b.curLineStart = b.curParent

		parent.Pos = Vec2{b.curX, b.curY}
		b.curX += relX
		b.curY += relY
		return
	}

	spaceIndex := -1
	for i := len(b.chars) - 1; i >= b.curLineStart; i-- {
		c := b.chars[i]
		if c.Parent >= 0 {
			continue
		}
		if isBlank(c.Code) {
			spaceIndex = i
			break
		}
	}
	if spaceIndex > 0 {
		breakIndex := spaceIndex + 1
		breakChr := &b.chars[breakIndex]
		relX := b.curX - breakChr.Pos.X
		relY := b.curY - breakChr.Pos.Y
		oldX, oldY := breakChr.Pos.X, breakChr.Pos.Y

		b.newLine()
		b.curLineStart = breakIndex

		deltaX := b.curX - oldX
		deltaY := b.curY - oldY
		for i := breakIndex; i < len(b.chars); i++ {
			b.chars[i].Pos.X += deltaX
			b.chars[i].Pos.Y += deltaY
		}
		b.curX += relX
		b.curY += relY
		return
	}

	if dontBeStartOfLine(next) {
		return
	}
	if len(b.chars) > 0 && dontBeLastOfLine(b.chars[len(b.chars)-1].Code) {
		return
	}
	b.newLine()
	b.curLineStart = len(b.chars)
}

// SetRuby appends the first n runes of text as an annotation run starting
// at group's top edge, horizontally centred against the group's
// bounding-box midpoint. The run uses the current character attributes.
func (b *TextBox) SetRuby(group int, text string, n int) error {
	b.pushCursor()
	defer b.popCursor()

	topLeft, bottomRight, ok := b.GroupBoundRect(group)
	if !ok {
		return errs.New(errs.KindNotFound, "textbox.SetRuby", nil)
	}
	b.setCursor(topLeft)

	rubyStart := len(b.chars)
	runes := []rune(text)
	count := n
	if count > len(runes) {
		count = len(runes)
	}
	for i := 0; i < count; i++ {
		if err := b.AddChar(runes[i]); err != nil {
			return err
		}
	}

	center := (topLeft.X + bottomRight.X) / 2
	b.horzCentering(rubyStart, count, center)
	return nil
}

func (b *TextBox) horzCentering(start, count int, center float64) {
	if count <= 0 {
		return
	}
	left, right, ok := b.BoundRect(start, count)
	if !ok {
		return
	}
	width := right.X - left.X
	offset := center - width/2 - left.X
	for i := start; i < start+count && i < len(b.chars); i++ {
		b.chars[i].Pos.X += offset
	}
}

// BoundRect computes the bounding box of count chars starting at start, in
// absolute box coordinates.
func (b *TextBox) BoundRect(start, count int) (topLeft, bottomRight Vec2, ok bool) {
	s := start
	if s < 0 {
		s = 0
	}
	e := start + count
	if e > len(b.chars) {
		e = len(b.chars)
	}
	if s >= e {
		return Vec2{}, Vec2{}, false
	}
	var l, r, t, btm float64
	first := true
	for i := s; i < e; i++ {
		c := b.chars[i]
		pos := b.CharPos(i)
		cl := pos.X + float64(c.Glyph.Left)
		cr := pos.X + float64(c.Glyph.Right)
		ct := pos.Y + float64(c.Glyph.Top)
		cb := pos.Y + float64(c.Glyph.Bottom)
		if first {
			l, r, t, btm = cl, cr, ct, cb
			first = false
			continue
		}
		if cl < l {
			l = cl
		}
		if cr > r {
			r = cr
		}
		if ct < t {
			t = ct
		}
		if cb > btm {
			btm = cb
		}
	}
	return Vec2{l, t}, Vec2{r, btm}, true
}

// GroupBoundRect is BoundRect restricted to the contiguous run of chars
// whose Parent == group, immediately following the group anchor.
func (b *TextBox) GroupBoundRect(group int) (topLeft, bottomRight Vec2, ok bool) {
	if group < 0 {
		return Vec2{}, Vec2{}, false
	}
	start := group + 1
	count := 0
	for i := start; i < len(b.chars); i++ {
		if b.chars[i].Parent == group {
			count++
		} else {
			break
		}
	}
	return b.BoundRect(start, count)
}

// Mesh emits 6 vertices per non-empty glyph (two triangles), with vertex
// alpha multiplied by the character's Progress for per-glyph fade-in.
func (b *TextBox) Mesh() []Vertex {
	verts := make([]Vertex, 0, len(b.chars)*6)
	for i, c := range b.chars {
		if c.Glyph.Right == c.Glyph.Left && c.Glyph.Bottom == c.Glyph.Top {
			continue // zero-area glyph (group anchors, unsupported runes)
		}
		pos := b.CharPos(i)
		left := pos.X + float64(c.Glyph.Left)
		right := pos.X + float64(c.Glyph.Right)
		top := pos.Y + float64(c.Glyph.Top)
		bottom := pos.Y + float64(c.Glyph.Bottom)

		r, g, bl, a := argbToFloat(c.Attr.PrimaryARGB)
		a *= c.Progress

		v := [4]Vertex{
			{X: left, Y: top, U: c.Glyph.U0, V: c.Glyph.V0, R: r, G: g, B: bl, A: a},
			{X: right, Y: top, U: c.Glyph.U1, V: c.Glyph.V0, R: r, G: g, B: bl, A: a},
			{X: right, Y: bottom, U: c.Glyph.U1, V: c.Glyph.V1, R: r, G: g, B: bl, A: a},
			{X: left, Y: bottom, U: c.Glyph.U0, V: c.Glyph.V1, R: r, G: g, B: bl, A: a},
		}
		verts = append(verts, v[0], v[1], v[2], v[0], v[2], v[3])
	}
	return verts
}

func argbToFloat(argb uint32) (r, g, b, a float32) {
	a = float32((argb>>24)&0xFF) / 255
	r = float32((argb>>16)&0xFF) / 255
	g = float32((argb>>8)&0xFF) / 255
	b = float32(argb&0xFF) / 255
	if argb == 0 {
		return 1, 1, 1, 1 // default to opaque white when no color was set
	}
	return r, g, b, a
}

func isBlank(c rune) bool {
	return c == ' ' || c == '\t' || c == '　'
}

// lineHeadForbidden holds kinsoku characters that must never start a line:
// closing brackets, small kana, and terminal punctuation.
var lineHeadForbidden = map[rune]bool{
	'｝': true, '〕': true, '〉': true, '》': true, '）': true, '」': true,
	'』': true, '】': true, '。': true, '、': true, '！': true, '？': true,
	'ァ': true, 'ィ': true, 'ゥ': true, 'ェ': true, 'ォ': true, 'ッ': true,
	'ャ': true, 'ュ': true, 'ョ': true,
	'!': true, '?': true, '.': true, ',': true,
}

// lineTailForbidden holds kinsoku characters that must never end a line:
// opening brackets.
var lineTailForbidden = map[rune]bool{
	'｛': true, '〔': true, '〈': true, '《': true, '（': true, '「': true,
	'『': true, '【': true,
}

func dontBeStartOfLine(c rune) bool { return lineHeadForbidden[c] }
func dontBeLastOfLine(c rune) bool  { return lineTailForbidden[c] }
