// Package taskspec formats and parses the task specification string handed to
// an agent at init. The string has the shape
//
//	VERSION RL-Glue-3.0 PROBLEMTYPE episodic DISCOUNTFACTOR 0.9
//	OBSERVATIONS DOUBLES (0 9) (0 9) (0 1) ACTIONS INTS (0 3) OBJECTIVES 2
//
// on a single line.
package taskspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is the only version string this package writes or accepts.
const Version = "RL-Glue-3.0"

// ErrFormat is returned for malformed task specifications.
var ErrFormat = errors.New("malformed task spec")

// Problem types.
const (
	Episodic   = "episodic"
	Continuing = "continuing"
)

// Range is a closed interval.
type Range struct {
	Min, Max float64
}

// IntRange is a closed interval of integers.
type IntRange struct {
	Min, Max int
}

// Count returns the number of integers in the range.
func (r IntRange) Count() int { return r.Max - r.Min + 1 }

// Spec is the decoded task specification.
type Spec struct {
	Problem      string
	Discount     float64
	Observations []Range
	Actions      IntRange
	Objectives   int
}

// Validate checks internal consistency.
func (s Spec) Validate() error {
	if s.Problem != Episodic && s.Problem != Continuing {
		return fmt.Errorf("%w: problem type %q", ErrFormat, s.Problem)
	}
	if s.Discount < 0 || s.Discount > 1 {
		return fmt.Errorf("%w: discount %g outside [0,1]", ErrFormat, s.Discount)
	}
	for i, r := range s.Observations {
		if r.Min > r.Max {
			return fmt.Errorf("%w: observation %d range (%g %g)", ErrFormat, i, r.Min, r.Max)
		}
	}
	if s.Actions.Count() < 1 {
		return fmt.Errorf("%w: empty action range", ErrFormat)
	}
	if s.Objectives < 1 {
		return fmt.Errorf("%w: %d objectives", ErrFormat, s.Objectives)
	}
	return nil
}

// Format renders s. Equal specs always render to equal strings.
func (s Spec) Format() string {
	var b strings.Builder
	b.WriteString("VERSION " + Version)
	b.WriteString(" PROBLEMTYPE " + s.Problem)
	b.WriteString(" DISCOUNTFACTOR " + formatFloat(s.Discount))
	b.WriteString(" OBSERVATIONS DOUBLES")
	for _, r := range s.Observations {
		fmt.Fprintf(&b, " (%s %s)", formatFloat(r.Min), formatFloat(r.Max))
	}
	fmt.Fprintf(&b, " ACTIONS INTS (%d %d)", s.Actions.Min, s.Actions.Max)
	fmt.Fprintf(&b, " OBJECTIVES %d", s.Objectives)
	return b.String()
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }

// Parse decodes the Format output. Keywords must appear in Format order.
func Parse(text string) (Spec, error) {
	p := &parser{fields: strings.Fields(text)}
	var s Spec

	p.expect("VERSION")
	if v := p.next(); p.err == nil && v != Version {
		p.fail("unsupported version %q", v)
	}
	p.expect("PROBLEMTYPE")
	s.Problem = p.next()
	p.expect("DISCOUNTFACTOR")
	s.Discount = p.float(p.next())
	p.expect("OBSERVATIONS")
	p.expect("DOUBLES")
	for p.err == nil && strings.HasPrefix(p.peek(), "(") {
		lo, hi := p.pair()
		s.Observations = append(s.Observations, Range{Min: p.float(lo), Max: p.float(hi)})
	}
	p.expect("ACTIONS")
	p.expect("INTS")
	lo, hi := p.pair()
	s.Actions = IntRange{Min: p.int(lo), Max: p.int(hi)}
	p.expect("OBJECTIVES")
	s.Objectives = p.int(p.next())
	if p.err == nil && p.pos != len(p.fields) {
		p.fail("trailing input %q", strings.Join(p.fields[p.pos:], " "))
	}
	if p.err != nil {
		return Spec{}, p.err
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// parser keeps the first error and turns every later call into a no-op.
type parser struct {
	fields []string
	pos    int
	err    error
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: "+format, append([]any{ErrFormat}, args...)...)
	}
}

func (p *parser) peek() string {
	if p.pos >= len(p.fields) {
		return ""
	}
	return p.fields[p.pos]
}

func (p *parser) next() string {
	if p.err != nil {
		return ""
	}
	if p.pos >= len(p.fields) {
		p.fail("unexpected end of input")
		return ""
	}
	f := p.fields[p.pos]
	p.pos++
	return f
}

func (p *parser) expect(keyword string) {
	if f := p.next(); p.err == nil && f != keyword {
		p.fail("expected %s, got %q", keyword, f)
	}
}

// pair reads "(a" "b)".
func (p *parser) pair() (string, string) {
	lo, hi := p.next(), p.next()
	if p.err != nil {
		return "", ""
	}
	if !strings.HasPrefix(lo, "(") || !strings.HasSuffix(hi, ")") {
		p.fail("malformed range %q %q", lo, hi)
		return "", ""
	}
	return lo[1:], hi[:len(hi)-1]
}

func (p *parser) float(s string) float64 {
	if p.err != nil {
		return 0
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail("bad number %q", s)
	}
	return x
}

func (p *parser) int(s string) int {
	if p.err != nil {
		return 0
	}
	x, err := strconv.Atoi(s)
	if err != nil {
		p.fail("bad integer %q", s)
	}
	return x
}
