package design

import (
	"fmt"
	"strconv"
	"strings"
)

// loopNames is the set of CDR loops RFdiffusion knows how to redesign.
var loopNames = map[string]bool{
	"H1": true, "H2": true, "H3": true,
	"L1": true, "L2": true, "L3": true,
}

// Loop is a single CDR loop design directive: a loop name plus a fixed
// length (Min == Max) or an inclusive length range.
type Loop struct {
	Name string
	Min  int
	Max  int
}

// String renders the loop in RFdiffusion token form: "H2:6" for a fixed
// length, "H3:5-13" for a range.
func (l Loop) String() string {
	if l.Min == l.Max {
		return fmt.Sprintf("%s:%d", l.Name, l.Min)
	}
	return fmt.Sprintf("%s:%d-%d", l.Name, l.Min, l.Max)
}

// LoopSpec is an ordered list of loop design directives.
type LoopSpec []Loop

// ParseLoops parses a comma-separated design-loop string such as
// "L1:8-13,L2:7,H3:5-13" into a LoopSpec. Token order is preserved.
func ParseLoops(s string) (LoopSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty design-loop list")
	}

	var spec LoopSpec
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty loop token in %q", s)
		}
		l, err := parseLoop(tok)
		if err != nil {
			return nil, err
		}
		spec = append(spec, l)
	}
	return spec, nil
}

func parseLoop(tok string) (Loop, error) {
	name, lens, ok := strings.Cut(tok, ":")
	if !ok {
		return Loop{}, fmt.Errorf("loop %q: want NAME:LENGTH or NAME:MIN-MAX", tok)
	}
	name = strings.TrimSpace(name)
	if !loopNames[name] {
		return Loop{}, fmt.Errorf("loop %q: unknown loop name %q", tok, name)
	}

	lens = strings.TrimSpace(lens)
	if lo, hi, ranged := strings.Cut(lens, "-"); ranged {
		min, err := strconv.Atoi(lo)
		if err != nil || min <= 0 {
			return Loop{}, fmt.Errorf("loop %q: min length must be a positive integer", tok)
		}
		max, err := strconv.Atoi(hi)
		if err != nil || max <= 0 {
			return Loop{}, fmt.Errorf("loop %q: max length must be a positive integer", tok)
		}
		if min > max {
			return Loop{}, fmt.Errorf("loop %q: min length %d exceeds max %d", tok, min, max)
		}
		return Loop{Name: name, Min: min, Max: max}, nil
	}

	n, err := strconv.Atoi(lens)
	if err != nil || n <= 0 {
		return Loop{}, fmt.Errorf("loop %q: length must be a positive integer", tok)
	}
	return Loop{Name: name, Min: n, Max: n}, nil
}

// String renders the spec as the bracketed Hydra literal RFdiffusion
// expects, e.g. "[L1:8-13,L2:7,H3:5-13]".
func (s LoopSpec) String() string {
	toks := make([]string, len(s))
	for i, l := range s {
		toks[i] = l.String()
	}
	return "[" + strings.Join(toks, ",") + "]"
}

// ParseLoopFilter parses a bare loop-name list such as "H1,H2,H3", used as
// the sequence-design stage's loop filter. The serialized form is the
// normalized comma-joined list with whitespace stripped.
func ParseLoopFilter(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var names []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if !loopNames[tok] {
			return nil, fmt.Errorf("loop filter: unknown loop name %q", tok)
		}
		names = append(names, tok)
	}
	return names, nil
}
