package pdf

import (
	"bytes"
	"strconv"
)

// pathScanner interprets the path construction and painting operators of a
// content stream and records what was stroked or filled. Text operators are
// ignored; glyphs come from the text backend.
type pathScanner struct {
	state  scanState
	stack  []scanState
	paths  []subpath
	cur    *subpath
	curX   float64
	curY   float64
	lines  []LineObject
	rects  []RectObject
	skipEI bool
}

type scanState struct {
	ctm       matrix
	lineWidth float64
}

type subpath struct {
	points   []Point // device space
	straight bool
	closed   bool
	isRect   bool
}

func newPathScanner() *pathScanner {
	return &pathScanner{
		state: scanState{ctm: identityMatrix(), lineWidth: 1},
	}
}

// scanPaths returns the stroked segments and painted rectangles of a content
// stream, in PDF user space (bottom-left origin)
func scanPaths(content []byte) ([]LineObject, []RectObject) {
	s := newPathScanner()
	var operands []string
	for _, token := range tokenize(content) {
		if isOperator(token) {
			s.apply(token, operands)
			operands = operands[:0]
			continue
		}
		operands = append(operands, token)
	}
	return s.lines, s.rects
}

func (s *pathScanner) apply(op string, operands []string) {
	switch op {
	case "q":
		s.stack = append(s.stack, s.state)
	case "Q":
		if n := len(s.stack); n > 0 {
			s.state = s.stack[n-1]
			s.stack = s.stack[:n-1]
		}
	case "cm":
		if v, ok := floats(operands, 6); ok {
			m := matrix{a: v[0], b: v[1], c: v[2], d: v[3], e: v[4], f: v[5]}
			s.state.ctm = m.mul(s.state.ctm)
		}
	case "w":
		if v, ok := floats(operands, 1); ok {
			s.state.lineWidth = v[0]
		}
	case "m":
		if v, ok := floats(operands, 2); ok {
			s.moveTo(v[0], v[1])
		}
	case "l":
		if v, ok := floats(operands, 2); ok {
			s.lineTo(v[0], v[1])
		}
	case "c":
		if v, ok := floats(operands, 6); ok {
			s.curveTo(v[4], v[5])
		}
	case "v", "y":
		if v, ok := floats(operands, 4); ok {
			s.curveTo(v[2], v[3])
		}
	case "h":
		s.closePath()
	case "re":
		if v, ok := floats(operands, 4); ok {
			s.rectangle(v[0], v[1], v[2], v[3])
		}
	case "S":
		s.paint(true, false)
	case "s":
		s.closePath()
		s.paint(true, false)
	case "f", "F", "f*":
		s.paint(false, true)
	case "B", "B*":
		s.paint(true, true)
	case "b", "b*":
		s.closePath()
		s.paint(true, true)
	case "n":
		s.paths, s.cur = nil, nil
	}
	// TODO: descend into Form XObjects invoked with Do; rulings drawn inside
	// forms are currently missed.
}

func (s *pathScanner) moveTo(x, y float64) {
	dx, dy := s.state.ctm.apply(x, y)
	s.paths = append(s.paths, subpath{points: []Point{{X: dx, Y: dy}}, straight: true})
	s.cur = &s.paths[len(s.paths)-1]
	s.curX, s.curY = x, y
}

func (s *pathScanner) lineTo(x, y float64) {
	if s.cur == nil {
		s.moveTo(s.curX, s.curY)
	}
	dx, dy := s.state.ctm.apply(x, y)
	s.cur.points = append(s.cur.points, Point{X: dx, Y: dy})
	s.curX, s.curY = x, y
}

func (s *pathScanner) curveTo(x, y float64) {
	if s.cur == nil {
		s.moveTo(s.curX, s.curY)
	}
	dx, dy := s.state.ctm.apply(x, y)
	s.cur.points = append(s.cur.points, Point{X: dx, Y: dy})
	s.cur.straight = false
	s.curX, s.curY = x, y
}

func (s *pathScanner) closePath() {
	if s.cur != nil {
		s.cur.closed = true
	}
}

func (s *pathScanner) rectangle(x, y, w, h float64) {
	s.moveTo(x, y)
	s.lineTo(x+w, y)
	s.lineTo(x+w, y+h)
	s.lineTo(x, y+h)
	s.cur.closed = true
	s.cur.isRect = true
	// re leaves the current point at the rectangle origin
	s.curX, s.curY = x, y
	s.cur = nil
}

func (s *pathScanner) paint(stroke, fill bool) {
	width := s.deviceLineWidth()
	for _, p := range s.paths {
		if !p.straight || len(p.points) < 2 {
			continue
		}
		if p.isRect || (fill && p.closed && isAxisAlignedQuad(p.points)) {
			b := pointsBounds(p.points)
			s.rects = append(s.rects, RectObject{
				X0: b.X0, Y0: b.Y0, X1: b.X1, Y1: b.Y1,
				LineWidth: lineWidthIf(stroke, width),
				Filled:    fill,
			})
			continue
		}
		if !stroke {
			continue
		}
		pts := p.points
		if p.closed {
			pts = append(pts, pts[0])
		}
		for i := 1; i < len(pts); i++ {
			s.lines = append(s.lines, LineObject{
				X0: pts[i-1].X, Y0: pts[i-1].Y,
				X1: pts[i].X, Y1: pts[i].Y,
				LineWidth: width,
			})
		}
	}
	s.paths, s.cur = nil, nil
}

// deviceLineWidth scales the line width by the CTM's average axis scale
func (s *pathScanner) deviceLineWidth() float64 {
	m := s.state.ctm
	sx := abs(m.a) + abs(m.c)
	sy := abs(m.b) + abs(m.d)
	return s.state.lineWidth * (sx + sy) / 2
}

func lineWidthIf(stroke bool, width float64) float64 {
	if stroke {
		return width
	}
	return 0
}

func isAxisAlignedQuad(points []Point) bool {
	if len(points) == 5 && abs(points[4].X-points[0].X) < FloatTolerance && abs(points[4].Y-points[0].Y) < FloatTolerance {
		points = points[:4]
	}
	if len(points) != 4 {
		return false
	}
	for i := range points {
		a, b := points[i], points[(i+1)%4]
		if abs(a.X-b.X) > FloatTolerance && abs(a.Y-b.Y) > FloatTolerance {
			return false
		}
	}
	return true
}

func pointsBounds(points []Point) BoundingBox {
	b := BoundingBox{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		b.X0 = min(b.X0, p.X)
		b.Y0 = min(b.Y0, p.Y)
		b.X1 = max(b.X1, p.X)
		b.Y1 = max(b.Y1, p.Y)
	}
	return b
}

func floats(operands []string, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, s := range operands[len(operands)-n:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

var pathOperators = map[string]bool{
	"q": true, "Q": true, "cm": true, "w": true,
	"m": true, "l": true, "c": true, "v": true, "y": true, "h": true, "re": true,
	"S": true, "s": true, "f": true, "F": true, "f*": true,
	"B": true, "B*": true, "b": true, "b*": true, "n": true,
}

// isOperator reports whether token is a bare keyword (anything that is not a
// number, name, string, array or dictionary delimiter)
func isOperator(token string) bool {
	if pathOperators[token] {
		return true
	}
	switch token[0] {
	case '/', '(', '<', '>', '[', ']', '+', '-', '.':
		return false
	}
	if token[0] >= '0' && token[0] <= '9' {
		return false
	}
	return true
}

// tokenize splits a content stream into operand and operator tokens. Strings
// and hex strings are kept as single opaque tokens and inline image data is
// skipped.
func tokenize(content []byte) []string {
	var tokens []string
	r := bytes.NewReader(content)

	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if isWhitespace(b) {
			continue
		}
		switch b {
		case '(':
			skipStringLiteral(r)
			tokens = append(tokens, "()")
		case '<':
			if next, err := r.ReadByte(); err == nil && next == '<' {
				tokens = append(tokens, "<<")
			} else {
				if err == nil {
					_ = r.UnreadByte()
				}
				skipUntil(r, '>')
				tokens = append(tokens, "<>")
			}
		case '>':
			if next, err := r.ReadByte(); err == nil && next != '>' {
				_ = r.UnreadByte()
			}
			tokens = append(tokens, ">>")
		case '[', ']', '{', '}':
			tokens = append(tokens, string(b))
		case '%':
			skipUntil(r, '\n')
		case '/':
			tokens = append(tokens, "/"+readRegular(r))
		default:
			_ = r.UnreadByte()
			token := readRegular(r)
			if token == "" {
				// stray delimiter
				_, _ = r.ReadByte()
				continue
			}
			tokens = append(tokens, token)
			if token == "ID" {
				skipInlineImage(r)
			}
		}
	}
	return tokens
}

func skipStringLiteral(r *bytes.Reader) {
	depth := 1
	for r.Len() > 0 && depth > 0 {
		b, _ := r.ReadByte()
		switch b {
		case '\\':
			_, _ = r.ReadByte()
		case '(':
			depth++
		case ')':
			depth--
		}
	}
}

func skipUntil(r *bytes.Reader, end byte) {
	for r.Len() > 0 {
		if b, _ := r.ReadByte(); b == end {
			return
		}
	}
}

// skipInlineImage consumes binary data up to and including the EI keyword
func skipInlineImage(r *bytes.Reader) {
	prev := byte(' ')
	for r.Len() > 1 {
		b, _ := r.ReadByte()
		if b == 'E' && isWhitespace(prev) {
			next, _ := r.ReadByte()
			if next == 'I' {
				if r.Len() == 0 {
					return
				}
				after, _ := r.ReadByte()
				if isWhitespace(after) {
					return
				}
				_ = r.UnreadByte()
			}
			prev = next
			continue
		}
		prev = b
	}
	r.Reset(nil)
}

func readRegular(r *bytes.Reader) string {
	var buf []byte
	for r.Len() > 0 {
		b, _ := r.ReadByte()
		if isWhitespace(b) || isDelimiter(b) {
			_ = r.UnreadByte()
			break
		}
		buf = append(buf, b)
	}
	return string(buf)
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}
