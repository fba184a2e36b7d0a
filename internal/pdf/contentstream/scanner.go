package contentstream

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

type point struct{ x, y float64 }

type subpath struct {
	points []point
	closed bool
	curved bool
	rect   bool
}

// Scanner interprets path construction, painting and XObject operators of a
// content stream. Text operators are consumed and ignored.
type Scanner struct {
	ctm      Matrix
	stack    []Matrix
	path     []*subpath
	operands []float64
	elements []layout.Element
}

// NewScanner creates a scanner with the identity CTM
func NewScanner() *Scanner {
	return &Scanner{ctm: Identity}
}

// Scan returns the graphic elements painted by the content stream in r,
// in painting order.
func Scan(r io.Reader) ([]layout.Element, error) {
	return NewScanner().Scan(r)
}

// Scan interprets r and returns the painted elements
func (s *Scanner) Scan(r io.Reader) ([]layout.Element, error) {
	lex := NewLexer(r)
	depth := 0
	for {
		tok, err := lex.Next()
		if err != nil {
			return s.elements, err
		}

		switch tok.Type {
		case TokenEOF:
			return s.elements, nil
		case TokenNumber:
			if depth == 0 {
				v, _ := strconv.ParseFloat(tok.Value, 64)
				s.operands = append(s.operands, v)
			}
		case TokenArrayStart, TokenDictStart:
			depth++
		case TokenArrayEnd, TokenDictEnd:
			if depth > 0 {
				depth--
			}
		case TokenOperator:
			depth = 0
			if tok.Value == "ID" {
				if err := lex.SkipInlineImage(); err != nil {
					return s.elements, err
				}
				s.operands = s.operands[:0]
				continue
			}
			if err := s.apply(tok.Value); err != nil {
				return s.elements, fmt.Errorf("operator %q at offset %d: %w", tok.Value, tok.Pos, err)
			}
			s.operands = s.operands[:0]
		}
	}
}

func (s *Scanner) args(n int) ([]float64, error) {
	if len(s.operands) < n {
		return nil, fmt.Errorf("need %d operands, have %d", n, len(s.operands))
	}
	return s.operands[len(s.operands)-n:], nil
}

func (s *Scanner) apply(op string) error {
	switch op {
	case "q":
		s.stack = append(s.stack, s.ctm)
	case "Q":
		if n := len(s.stack); n > 0 {
			s.ctm = s.stack[n-1]
			s.stack = s.stack[:n-1]
		}
	case "cm":
		a, err := s.args(6)
		if err != nil {
			return err
		}
		s.ctm = Matrix{a[0], a[1], a[2], a[3], a[4], a[5]}.Multiply(s.ctm)

	case "m":
		a, err := s.args(2)
		if err != nil {
			return err
		}
		s.moveTo(a[0], a[1])
	case "l":
		a, err := s.args(2)
		if err != nil {
			return err
		}
		s.lineTo(a[0], a[1], false)
	case "c":
		a, err := s.args(6)
		if err != nil {
			return err
		}
		s.lineTo(a[4], a[5], true)
	case "v", "y":
		a, err := s.args(4)
		if err != nil {
			return err
		}
		s.lineTo(a[2], a[3], true)
	case "h":
		if sp := s.current(); sp != nil {
			sp.closed = true
		}
	case "re":
		a, err := s.args(4)
		if err != nil {
			return err
		}
		s.rectangle(a[0], a[1], a[2], a[3])

	case "s", "b", "b*":
		if sp := s.current(); sp != nil {
			sp.closed = true
		}
		s.paint()
	case "S", "f", "F", "f*", "B", "B*":
		s.paint()
	case "n":
		s.path = nil

	case "Do":
		x0, y0 := s.ctm.Apply(0, 0)
		x1, y1 := s.ctm.Apply(1, 1)
		x2, y2 := s.ctm.Apply(0, 1)
		x3, y3 := s.ctm.Apply(1, 0)
		box := layout.NewBBox(x0, y0, x1, y1).Union(layout.NewBBox(x2, y2, x3, y3))
		s.elements = append(s.elements, layout.Element{Kind: layout.KindFigure, BBox: box})
	}
	return nil
}

func (s *Scanner) current() *subpath {
	if len(s.path) == 0 {
		return nil
	}
	return s.path[len(s.path)-1]
}

func (s *Scanner) moveTo(x, y float64) {
	px, py := s.ctm.Apply(x, y)
	s.path = append(s.path, &subpath{points: []point{{px, py}}})
}

func (s *Scanner) lineTo(x, y float64, curved bool) {
	sp := s.current()
	px, py := s.ctm.Apply(x, y)
	switch {
	case sp == nil:
		// no current point: the segment degenerates to a move
		s.path = append(s.path, &subpath{points: []point{{px, py}}})
		return
	case sp.closed:
		// drawing after h continues from the closed subpath's start
		sp = &subpath{points: []point{sp.points[0]}}
		s.path = append(s.path, sp)
	}
	sp.points = append(sp.points, point{px, py})
	sp.rect = false
	if curved {
		sp.curved = true
	}
}

func (s *Scanner) rectangle(x, y, w, h float64) {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	sp := &subpath{closed: true, rect: true}
	for _, c := range corners {
		px, py := s.ctm.Apply(c[0], c[1])
		sp.points = append(sp.points, point{px, py})
	}
	s.path = append(s.path, sp)
}

func (s *Scanner) paint() {
	for _, sp := range s.path {
		if len(sp.points) < 2 {
			continue
		}
		s.elements = append(s.elements, classify(sp))
	}
	s.path = nil
}

func classify(sp *subpath) layout.Element {
	box := layout.NewBBox(sp.points[0].x, sp.points[0].y, sp.points[0].x, sp.points[0].y)
	for _, p := range sp.points[1:] {
		box = box.Union(layout.NewBBox(p.x, p.y, p.x, p.y))
	}

	switch {
	case sp.curved:
		return layout.Element{Kind: layout.KindCurve, BBox: box}
	case len(sp.points) == 2:
		return layout.Element{Kind: layout.KindLine, BBox: box}
	case sp.rect || isAxisAlignedQuad(sp.points):
		return layout.Element{Kind: layout.KindRect, BBox: box}
	default:
		return layout.Element{Kind: layout.KindCurve, BBox: box}
	}
}

// isAxisAlignedQuad reports whether points trace four axis-aligned edges,
// optionally repeating the first point at the end.
func isAxisAlignedQuad(points []point) bool {
	if n := len(points); n == 5 && points[0] == points[4] {
		points = points[:4]
	}
	if len(points) != 4 {
		return false
	}
	for i := range points {
		a, b := points[i], points[(i+1)%4]
		if a.x != b.x && a.y != b.y {
			return false
		}
	}
	// reject degenerate shapes that go back and forth along one axis
	box := layout.NewBBox(points[0].x, points[0].y, points[2].x, points[2].y)
	return box.Width() > 0 && box.Height() > 0 && !math.IsNaN(box.Width())
}
