// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"regexp"
	"strconv"
)

// Pattern is one progress matcher.
// Percentage patterns capture a single number, count patterns capture current and total.
type Pattern struct {
	Name string
	Kind MatchKind
	re   *regexp.Regexp
}

// MatchKind tells how a percentage was derived.
type MatchKind int

const (
	// MatchPercentage is a literal "NN%".
	MatchPercentage MatchKind = iota
	// MatchCount is "X of Y" style, converted to 100*X/Y.
	MatchCount
)

func (k MatchKind) String() string {
	if k == MatchCount {
		return "count"
	}

	return "percentage"
}

func pct(name, expr string) Pattern {
	return Pattern{Name: name, Kind: MatchPercentage, re: regexp.MustCompile(`(?i)` + expr)}
}

func count(name, expr string) Pattern {
	return Pattern{Name: name, Kind: MatchCount, re: regexp.MustCompile(`(?i)` + expr)}
}

const num = `(\d+(?:\.\d+)?)`

// Patterns is the ordered list tried by Parse. All percentage patterns come before all
// count patterns and the first pattern yielding a usable value wins.
var Patterns = []Pattern{
	pct("percent", num+`\s*%`),
	pct("progress-colon", `progress:\s*`+num+`\s*%`),
	pct("percent-complete", num+`\s*%\s*(?:complete|done|processed|finished)`),
	pct("progress-equals", `progress\s*=\s*`+num+`\s*%`),

	count("frame-of", `frame\s*(\d+)\s*of\s*(\d+)`),
	count("slash", `(\d+)\s*/\s*(\d+)`),
	count("processing-of", `processing\s*(\d+)\s*of\s*(\d+)`),
	count("file-of", `file\s*(\d+)\s*of\s*(\d+)`),
	count("item-of", `item\s*(\d+)\s*of\s*(\d+)`),
	count("task-of", `task\s*(\d+)\s*of\s*(\d+)`),
	count("out-of", `(\d+)\s*out\s*of\s*(\d+)`),
}

// Match is a successful Parse.
type Match struct {
	Kind       MatchKind
	Pattern    string
	Current    float64 // MatchCount only
	Total      float64 // MatchCount only
	Percentage float64 // Always within [0,100]
}

// Parse tries Patterns in order against line.
func Parse(line string) (Match, bool) {
	for _, p := range Patterns {
		sub := p.re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}

		switch p.Kind {
		case MatchPercentage:
			v, err := strconv.ParseFloat(sub[1], 64)
			if err != nil {
				continue
			}

			return Match{Kind: MatchPercentage, Pattern: p.Name, Percentage: clamp(v)}, true
		case MatchCount:
			cur, err1 := strconv.ParseFloat(sub[1], 64)
			total, err2 := strconv.ParseFloat(sub[2], 64)

			if err1 != nil || err2 != nil || total <= 0 {
				continue
			}

			return Match{
				Kind:       MatchCount,
				Pattern:    p.Name,
				Current:    cur,
				Total:      total,
				Percentage: clamp(cur / total * 100),
			}, true
		}
	}

	return Match{}, false
}

// Extract returns the completion percentage found in line, if any.
func Extract(line string) (float64, bool) {
	m, ok := Parse(line)
	return m.Percentage, ok
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Stream names the output stream a line came from.
type Stream int

const (
	// Stdout is the standard output stream.
	Stdout Stream = iota
	// Stderr is the standard error stream.
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}

	return "stdout"
}

// Observation is a percentage seen on a line of output.
type Observation struct {
	Percentage float64 `yaml:"percentage"`
	Line       string  `yaml:"line"`
	Stream     Stream  `yaml:"-"`
}
