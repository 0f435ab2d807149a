package dataset

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchMethod records how a column was bound to a semantic role.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchContent MatchMethod = "content"
	MatchNone    MatchMethod = "none"
)

// Confidence is the caller-facing certainty of a column match.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
	ConfidenceNone Confidence = "none"
)

// sampleSize is the number of non-empty values inspected per column during content sniffing.
const sampleSize = 5

// maxSniffedCycleTime bounds content-detected cycle-time columns so estimate-like columns are skipped.
const maxSniffedCycleTime = 100.0

var (
	endDateAliases   = []string{"end", "end date"}
	cycleTimeAliases = []string{"ct", "cycle time"}
	idAliases        = []string{"id", "key"}
	estimateAliases  = []string{"estimate", "est"}

	datePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

// ColumnMatch binds a semantic role to a header. An empty Key means the role was not found.
type ColumnMatch struct {
	Key        string      `json:"key,omitempty"`
	Method     MatchMethod `json:"method"`
	Confidence Confidence  `json:"confidence"`
}

// Found reports whether the role resolved to a column.
func (m ColumnMatch) Found() bool {
	return m.Key != ""
}

// ResolvedColumns maps the four semantic roles to headers of a dataset.
type ResolvedColumns struct {
	ID        ColumnMatch `json:"id"`
	EndDate   ColumnMatch `json:"end_date"`
	CycleTime ColumnMatch `json:"cycle_time"`
	Estimate  ColumnMatch `json:"estimate"`
}

// Usable reports whether both columns required to build work items were resolved.
func (c ResolvedColumns) Usable() bool {
	return c.EndDate.Found() && c.CycleTime.Found()
}

// LowConfidence lists the roles that were inferred from cell content rather than header names.
func (c ResolvedColumns) LowConfidence() []string {
	var roles []string
	for _, r := range []struct {
		name  string
		match ColumnMatch
	}{
		{"id", c.ID},
		{"end_date", c.EndDate},
		{"cycle_time", c.CycleTime},
		{"estimate", c.Estimate},
	} {
		if r.match.Confidence == ConfidenceLow {
			roles = append(roles, r.name)
		}
	}
	return roles
}

// ResolveColumns maps headers to semantic roles. Header names are matched first;
// end-date and cycle-time fall back to sniffing the first non-empty cell values
// when no header matches.
func ResolveColumns(headers []string, rows []Row) ResolvedColumns {
	res := ResolvedColumns{
		ID:        notFound(),
		EndDate:   notFound(),
		CycleTime: notFound(),
		Estimate:  notFound(),
	}

	assigned := make(map[string]bool)
	bindExact := func(target *ColumnMatch, aliases []string) {
		for _, h := range headers {
			if assigned[h] {
				continue
			}
			if matchesAlias(h, aliases) {
				*target = ColumnMatch{Key: h, Method: MatchExact, Confidence: ConfidenceHigh}
				assigned[h] = true
				return
			}
		}
	}

	bindExact(&res.EndDate, endDateAliases)
	bindExact(&res.CycleTime, cycleTimeAliases)
	bindExact(&res.ID, idAliases)
	bindExact(&res.Estimate, estimateAliases)

	if res.EndDate.Found() && res.CycleTime.Found() {
		return res
	}

	for _, h := range headers {
		if assigned[h] {
			continue
		}
		samples := sampleColumn(rows, h)
		if len(samples) == 0 {
			continue
		}

		if !res.EndDate.Found() && looksLikeDates(samples) {
			res.EndDate = ColumnMatch{Key: h, Method: MatchContent, Confidence: ConfidenceLow}
			assigned[h] = true
			continue
		}
		if !res.CycleTime.Found() && looksLikeCycleTimes(samples) {
			res.CycleTime = ColumnMatch{Key: h, Method: MatchContent, Confidence: ConfidenceLow}
			assigned[h] = true
		}

		if res.EndDate.Found() && res.CycleTime.Found() {
			break
		}
	}

	return res
}

func notFound() ColumnMatch {
	return ColumnMatch{Method: MatchNone, Confidence: ConfidenceNone}
}

func matchesAlias(header string, aliases []string) bool {
	h := strings.TrimSpace(header)
	for _, a := range aliases {
		if strings.EqualFold(h, a) {
			return true
		}
	}
	return false
}

func sampleColumn(rows []Row, key string) []string {
	var samples []string
	for _, r := range rows {
		v := r.Get(key)
		if v == "" {
			continue
		}
		samples = append(samples, v)
		if len(samples) == sampleSize {
			break
		}
	}
	return samples
}

func looksLikeDates(samples []string) bool {
	for _, s := range samples {
		if datePattern.MatchString(s) {
			return true
		}
	}
	return false
}

func looksLikeCycleTimes(samples []string) bool {
	for _, s := range samples {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > maxSniffedCycleTime {
			return false
		}
	}
	return true
}
