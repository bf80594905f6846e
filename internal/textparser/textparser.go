// Package textparser tokenises style-delimited markup against a registered
// table of start/end tokens and drives three callbacks: onStyleStart,
// onChar, onStyleEnd.
package textparser

// Callbacks receives the events the parser emits while scanning.
type Callbacks struct {
	// OnStyleStart fires when a style's start token matches.
	OnStyleStart func(id string)
	// OnChar fires for every literal character outside of markup tokens.
	OnChar func(c rune)
	// OnStyleEnd fires when a style's end token matches the currently open
	// style, or when a mismatched end is encountered (id=="" in that case).
	// innerText is the text between start and end token, up to the first
	// '|'; argAfterPipe is the portion after that '|', or "" if there was none.
	OnStyleEnd func(id string, innerText string, argAfterPipe string)
}

// style is a registered open/close token pair.
type style struct {
	id         string
	startToken []rune
	endToken   []rune // never empty; line styles use "\n"
}

// Parser tokenises text against a caller-registered table of styles. The
// zero value is not usable; use NewParser.
type Parser struct {
	escape rune
	styles []style
}

// NewParser returns a parser using '\\' as the escape character, matching
// spec.md's documented default.
func NewParser() *Parser {
	return &Parser{escape: '\\'}
}

// SetEscape overrides the escape character.
func (p *Parser) SetEscape(r rune) { p.escape = r }

// AddStyle registers a paired style: start opens it, end closes it. Both
// must be non-empty.
func (p *Parser) AddStyle(id, start, end string) {
	if start == "" || end == "" {
		panic("textparser: style start/end token must be non-empty")
	}
	p.styles = append(p.styles, style{id: id, startToken: []rune(start), endToken: []rune(end)})
}

// AddLineStyle registers a style that closes implicitly at the next
// newline (or end of input), matching the '#' line-comment-like convention.
func (p *Parser) AddLineStyle(id, start string) {
	if start == "" {
		panic("textparser: style start token must be non-empty")
	}
	p.styles = append(p.styles, style{id: id, startToken: []rune(start), endToken: []rune("\n")})
}

type mark struct {
	style     *style // nil for the implicit top-level default style
	startPos  int    // rune index where this style's content begins
}

// matchPrefix reports whether tok matches text at position pos.
func matchPrefix(text []rune, pos int, tok []rune) bool {
	if pos+len(tok) > len(text) {
		return false
	}
	for i, r := range tok {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}

// isStart finds the longest-matching registered start token at pos.
func (p *Parser) isStart(text []rune, pos int) (*style, int) {
	var best *style
	bestLen := 0
	for i := range p.styles {
		s := &p.styles[i]
		if matchPrefix(text, pos, s.startToken) && len(s.startToken) > bestLen {
			best = s
			bestLen = len(s.startToken)
		}
	}
	return best, bestLen
}

// Parse scans text against the registered styles, invoking cb's callbacks.
// An implicit default style (id "") wraps the entire input, matching
// KTextParser's "style 0 always opens first and closes last" structure.
func (p *Parser) Parse(text string, cb Callbacks) {
	runes := []rune(text)

	startStyle := func(s *style) {
		id := ""
		if s != nil {
			id = s.id
		}
		if cb.OnStyleStart != nil {
			cb.OnStyleStart(id)
		}
	}
	endStyle := func(popped mark, expected *style, endPos int) {
		if popped.style == expected {
			inner := string(runes[popped.startPos:endPos])
			left, right := splitPipe(inner)
			id := ""
			if expected != nil {
				id = expected.id
			}
			if cb.OnStyleEnd != nil {
				cb.OnStyleEnd(id, left, right)
			}
		} else {
			if cb.OnStyleEnd != nil {
				cb.OnStyleEnd("", "", "")
			}
		}
	}

	var stack []mark
	startStyle(nil)
	stack = append(stack, mark{style: nil, startPos: 0})

	i := 0
	for i < len(runes) {
		c := runes[i]

		if c == p.escape && i+1 < len(runes) {
			if cb.OnChar != nil {
				cb.OnChar(runes[i+1])
			}
			i += 2
			continue
		}

		if s, n := p.isStart(runes, i); s != nil {
			i += n
			startStyle(s)
			stack = append(stack, mark{style: s, startPos: i})
			continue
		}

		if len(stack) > 0 {
			top := stack[len(stack)-1].style
			if top != nil && matchPrefix(runes, i, top.endToken) {
				popped := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				endStyle(popped, top, i)
				i += len(top.endToken)
				continue
			}
		}

		if cb.OnChar != nil {
			cb.OnChar(c)
		}
		i++
	}

	// A line style still open at end of input closes there as it would at a
	// newline, before the default style closes.
	if len(stack) > 1 {
		if top := stack[len(stack)-1]; string(top.style.endToken) == "\n" {
			stack = stack[:len(stack)-1]
			endStyle(top, top.style, len(runes))
		}
	}

	if len(stack) > 0 {
		popped := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		endStyle(popped, nil, len(runes))
	}
}

func splitPipe(s string) (left, right string) {
	runes := []rune(s)
	for i, r := range runes {
		if r == '|' {
			return string(runes[:i]), string(runes[i+1:])
		}
	}
	return s, ""
}
