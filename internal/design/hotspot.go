package design

import (
	"fmt"
	"strconv"
	"strings"
)

// Hotspot identifies a single target residue, e.g. T305: the chain letter
// followed by the residue number.
type Hotspot struct {
	Chain   byte
	Residue int
}

// String renders the hotspot in RFdiffusion token form, e.g. "T305".
func (h Hotspot) String() string {
	return fmt.Sprintf("%c%d", h.Chain, h.Residue)
}

// HotspotList is an ordered list of target hotspot residues.
type HotspotList []Hotspot

// ParseHotspots parses a comma-separated hotspot string such as
// "T305, T456" into a HotspotList. Token order is preserved.
func ParseHotspots(s string) (HotspotList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty hotspot list")
	}

	var list HotspotList
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty hotspot token in %q", s)
		}
		h, err := parseHotspot(tok)
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, nil
}

func parseHotspot(tok string) (Hotspot, error) {
	if len(tok) < 2 {
		return Hotspot{}, fmt.Errorf("hotspot %q: too short, want e.g. T305", tok)
	}
	chain := tok[0]
	if chain < 'A' || chain > 'Z' {
		return Hotspot{}, fmt.Errorf("hotspot %q: chain must be an uppercase letter", tok)
	}
	res, err := strconv.Atoi(tok[1:])
	if err != nil || res <= 0 {
		return Hotspot{}, fmt.Errorf("hotspot %q: residue number must be a positive integer", tok)
	}
	return Hotspot{Chain: chain, Residue: res}, nil
}

// String renders the list as the bracketed Hydra literal RFdiffusion
// expects, e.g. "[T305,T456]".
func (l HotspotList) String() string {
	toks := make([]string, len(l))
	for i, h := range l {
		toks[i] = h.String()
	}
	return "[" + strings.Join(toks, ",") + "]"
}
