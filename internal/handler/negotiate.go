package handler

import (
	"strconv"
	"strings"
)

type acceptRange struct {
	typ, sub string
	q        float64
	index    int
}

// preferredType returns the offer the Accept header ranks highest, or ""
// when none is acceptable.  Ranking is by q-value, then by how specific the
// matching range is, then by the range's position in the header, then by
// offer order.  A missing header accepts the first offer.
func preferredType(accept string, offers []string) string {
	if len(offers) == 0 {
		return ""
	}
	if strings.TrimSpace(accept) == "" {
		return offers[0]
	}
	ranges := parseAccept(accept)

	best := ""
	bestQ, bestSpec, bestIdx := 0.0, -1, 0
	for _, offer := range offers {
		q, specificity, idx := match(ranges, offer)
		if q <= 0 {
			continue
		}
		if best == "" || q > bestQ ||
			(q == bestQ && specificity > bestSpec) ||
			(q == bestQ && specificity == bestSpec && idx < bestIdx) {
			best, bestQ, bestSpec, bestIdx = offer, q, specificity, idx
		}
	}
	return best
}

// match finds the most specific range covering offer.  Specificity is 2 for
// type/subtype, 1 for type/* and 0 for */*.
func match(ranges []acceptRange, offer string) (q float64, specificity, index int) {
	typ, sub, ok := strings.Cut(offer, "/")
	if !ok {
		return 0, -1, 0
	}
	specificity = -1
	for _, r := range ranges {
		s := -1
		switch {
		case r.typ == typ && r.sub == sub:
			s = 2
		case r.typ == typ && r.sub == "*":
			s = 1
		case r.typ == "*" && r.sub == "*":
			s = 0
		}
		if s > specificity {
			q, specificity, index = r.q, s, r.index
		}
	}
	return q, specificity, index
}

func parseAccept(header string) []acceptRange {
	var out []acceptRange
	for i, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(fields[0]))
		if mt == "*" {
			mt = "*/*"
		}
		typ, sub, ok := strings.Cut(mt, "/")
		if !ok || typ == "" || sub == "" {
			continue
		}

		r := acceptRange{typ: typ, sub: sub, q: 1, index: i}
		valid := true
		for _, p := range fields[1:] {
			k, v, _ := strings.Cut(strings.TrimSpace(p), "=")
			if strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 || f > 1 {
				valid = false
				break
			}
			r.q = f
		}
		if valid {
			out = append(out, r)
		}
	}
	return out
}
