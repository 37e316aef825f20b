package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Malformed or out-of-range q values
// count as 1.0 and a bare type such as "text" is read as "text/*".
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: strings.TrimSpace(typ), subtype: strings.TrimSpace(subtype), q: 1.0}
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(strings.ToLower(k)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
			break
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// match reports how precisely the range names format ("json" or "cbor"); higher is more specific.
// Zero means no match.
func (m mediaRange) match(format string) int {
	switch {
	case m.typ == "application" && m.subtype == "problem+"+format:
		return 5
	case m.typ == "application" && m.subtype == format:
		return 4
	case m.typ == "application" && m.subtype == "*+"+format:
		return 3
	case m.typ == "application" && m.subtype == "*":
		return 2
	case m.typ == "*" && m.subtype == "*":
		return 1
	default:
		return 0
	}
}

// preference returns the q value and precision of the most specific range matching format.
func preference(ranges []mediaRange, format string) (q float64, precision int) {
	for _, r := range ranges {
		if p := r.match(format); p > precision {
			precision = p
			q = r.q
		}
	}
	return q, precision
}

// selectFormat reports whether the problem should be encoded as CBOR. JSON is the default and
// wins ties of equal quality and precision.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cborQ, cborP := preference(ranges, "cbor")
	jsonQ, jsonP := preference(ranges, "json")
	if cborQ <= 0 {
		return false
	}
	if cborQ != jsonQ {
		return cborQ > jsonQ
	}
	return cborP > jsonP
}
