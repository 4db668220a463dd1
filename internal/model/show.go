package model

import (
	"fmt"
	"slices"
	"strings"
)

// Show is one row of the tv_shows table, keyed by column name.  Only tvid
// and name carry meaning here; every other column is passed through to the
// JSON and HTML views untouched.
type Show map[string]any

// Name returns the show's display name ("" when the column is absent).
func (s Show) Name() string { return text(s["name"]) }

// TVID returns the show's identifier rendered as a string.
func (s Show) TVID() string { return text(s["tvid"]) }

// ShowSummary is the reduced projection used by list views.
type ShowSummary struct {
	Name string `json:"name"`
	TVID string `json:"tvid"`
}

// Summaries reduces rows to their {name, tvid} projection, preserving order.
func Summaries(rows []Show) []ShowSummary {
	out := make([]ShowSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ShowSummary{Name: r.Name(), TVID: r.TVID()})
	}
	return out
}

// CompareDesc orders summaries by name in reverse lexicographic order:
// a sorts before b when a.Name > b.Name.  Equal names compare as 0.
func CompareDesc(a, b ShowSummary) int {
	return -strings.Compare(a.Name, b.Name)
}

// SortDesc sorts summaries in place with CompareDesc.  Equal names keep the
// order the database returned them in.
func SortDesc(s []ShowSummary) {
	slices.SortStableFunc(s, CompareDesc)
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
