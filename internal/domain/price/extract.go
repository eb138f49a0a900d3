// Package price extracts structured price constraints from free-text
// search queries. It is pure: no I/O, no shared state, safe for
// concurrent use.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the outcome of constraint extraction: the residual query
// text to embed plus the extracted price range. Query is never empty;
// if constraint removal consumes the whole input, the original raw
// query is returned verbatim.
type Parsed struct {
	Query string
	Range Range
}

// Defaults for the soft heuristic words, applied only when the
// corresponding side was not set by an explicit phrase.
const (
	CheapMaxDefault   = 15.0
	PremiumMinDefault = 100.0
)

// approxBand is the half-width of the "around X" band, relative to X.
const approxBand = 0.10

// Shared pattern fragments. A number allows comma grouping and an
// optional decimal part; a currency token is tolerated before the
// number (symbol only) and after it (symbol or word).
const (
	numPat = `(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`
	curPat = `(?:\$|usd|dollars?)`
	wsPat  = `[ \t]*`
	amtPat = `(?:\$` + wsPat + `)?(` + numPat + `)`
	curOpt = `(?:` + wsPat + curPat + `)?`
)

// Pass patterns, in precedence order. Earlier passes erase their
// matches so later, more generic passes cannot re-consume them.
var (
	intervalRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:between|from)` + wsPat + amtPat + wsPat + `(?:and|to|-)` + wsPat + amtPat + curOpt),
		regexp.MustCompile(amtPat + wsPat + `(?:to|-)` + wsPat + amtPat + curOpt),
	}

	upperRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:under|below|at` + wsPat + `most)` + wsPat + amtPat + curOpt),
		regexp.MustCompile(`(?:<=|<)` + wsPat + amtPat + curOpt),
		regexp.MustCompile(`(?:up` + wsPat + `to)` + wsPat + amtPat + curOpt),
	}

	lowerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:over|above|at` + wsPat + `least)` + wsPat + amtPat + curOpt),
		regexp.MustCompile(`(?:>=|>)` + wsPat + amtPat + curOpt),
	}

	aroundRe = regexp.MustCompile(`(?:around|about|approx(?:\.|imately)?)` + wsPat + amtPat + curOpt)
	exactRe  = regexp.MustCompile(`exactly` + wsPat + amtPat + curOpt)

	cheapRe   = regexp.MustCompile(`\b(?:cheap|inexpensive|budget)\b`)
	premiumRe = regexp.MustCompile(`\b(?:expensive|premium|high-end)\b`)
)

// Extract parses natural-language price phrases out of raw and returns
// the cleaned residual text together with the tightened price range.
// It never fails: unrecognized input yields an unconstrained range.
//
// The pipeline runs a fixed sequence of passes over a lower-cased,
// space-padded working copy. Each match updates the running range via
// the tightening rule (max of candidate mins, min of candidate maxes)
// and its span is replaced with a single space.
func Extract(raw string) Parsed {
	s := " " + strings.ToLower(strings.TrimSpace(raw)) + " "
	var rng Range

	// Pass 1: intervals. The two numbers are sorted regardless of the
	// order they appeared in text.
	for _, re := range intervalRes {
		s = consumePair(s, re, func(a, b float64) {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			rng.Tighten(lo, hi)
		})
	}

	// Pass 2: upper bounds.
	for _, re := range upperRes {
		s = consumeSingle(s, re, rng.TightenMax)
	}

	// Pass 3: lower bounds.
	for _, re := range lowerRes {
		s = consumeSingle(s, re, rng.TightenMin)
	}

	// Pass 4: approximation bands. "around X" is a symmetric ±10%
	// band, "exactly X" a degenerate [X, X] one. Both fold through
	// the same two-sided tightening update.
	s = consumeSingle(s, aroundRe, func(v float64) {
		rng.Tighten((1-approxBand)*v, (1+approxBand)*v)
	})
	s = consumeSingle(s, exactRe, func(v float64) {
		rng.Tighten(v, v)
	})

	// Pass 5: soft heuristic words. They set a default bound only if
	// the side is still open, but are erased from the text either way.
	if cheapRe.MatchString(s) {
		if rng.Max == nil {
			v := CheapMaxDefault
			rng.Max = &v
		}
		s = cheapRe.ReplaceAllString(s, " ")
	}
	if premiumRe.MatchString(s) {
		if rng.Min == nil {
			v := PremiumMinDefault
			rng.Min = &v
		}
		s = premiumRe.ReplaceAllString(s, " ")
	}

	rng.normalize()

	cleaned := strings.Join(strings.Fields(s), " ")
	if cleaned == "" {
		cleaned = raw
	}

	return Parsed{Query: cleaned, Range: rng}
}

// consumeSingle repeatedly finds re in s, applies the captured number,
// and erases the matched span so the same tokens cannot be consumed
// twice. Matches are processed in left-to-right scan order.
func consumeSingle(s string, re *regexp.Regexp, apply func(v float64)) string {
	for {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}
		apply(parseAmount(s[loc[2]:loc[3]]))
		s = s[:loc[0]] + " " + s[loc[1]:]
	}
}

// consumePair is consumeSingle for patterns capturing two numbers.
func consumePair(s string, re *regexp.Regexp, apply func(a, b float64)) string {
	for {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return s
		}
		apply(parseAmount(s[loc[2]:loc[3]]), parseAmount(s[loc[4]:loc[5]]))
		s = s[:loc[0]] + " " + s[loc[1]:]
	}
}

// parseAmount converts a pattern-validated numeric literal, stripping
// thousands separators. The patterns guarantee a parseable value, so
// no error path exists here.
func parseAmount(lit string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(lit, ",", ""), 64)
	return v
}
