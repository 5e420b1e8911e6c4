// Package rebar reads the reinforcement labels used by StbCommon: bar
// diameters such as "D25" and material grades such as "SD295A".
package rebar

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/lo"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/stb"
)

// Diameter is a bar designation: a letter prefix and a nominal size in mm.
type Diameter struct {
	Prefix string `json:"prefix"`
	Size   int    `json:"size"`
}

func (d Diameter) String() string { return d.Prefix + strconv.Itoa(d.Size) }

// Grade is a steel grade: a letter prefix, the nominal yield strength in
// N/mm2 and an optional letter suffix.
type Grade struct {
	Prefix   string `json:"prefix"`
	Strength int    `json:"strength"`
	Suffix   string `json:"suffix,omitempty"`
}

func (g Grade) String() string { return g.Prefix + strconv.Itoa(g.Strength) + g.Suffix }

//nolint:govet // participle grammar tags are not standard struct tags
type diameterGrammar struct {
	Prefix string `parser:"@Letters"`
	Size   int    `parser:"@Int"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type gradeGrammar struct {
	Prefix   string  `parser:"@Letters"`
	Strength int     `parser:"@Int"`
	Suffix   *string `parser:"@Letters?"`
}

var labelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Letters", Pattern: `[A-Za-z]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	diameterParser = participle.MustBuild[diameterGrammar](
		participle.Lexer(labelLexer),
		participle.Elide("Whitespace"),
	)
	gradeParser = participle.MustBuild[gradeGrammar](
		participle.Lexer(labelLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseDiameter parses a bar designation such as "D10" or "D25".
func ParseDiameter(s string) (Diameter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Diameter{}, fmt.Errorf("%w: empty bar diameter", stberrors.ErrInvalidInput)
	}
	parsed, err := diameterParser.ParseString("", s)
	if err != nil {
		return Diameter{}, fmt.Errorf("%w: bar diameter %q: %v", stberrors.ErrInvalidInput, s, err)
	}
	return Diameter{Prefix: parsed.Prefix, Size: parsed.Size}, nil
}

// ParseGrade parses a steel grade such as "SD295A" or "SD390".
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Grade{}, fmt.Errorf("%w: empty steel grade", stberrors.ErrInvalidInput)
	}
	parsed, err := gradeParser.ParseString("", s)
	if err != nil {
		return Grade{}, fmt.Errorf("%w: steel grade %q: %v", stberrors.ErrInvalidInput, s, err)
	}
	g := Grade{Prefix: parsed.Prefix, Strength: parsed.Strength}
	if parsed.Suffix != nil {
		g.Suffix = *parsed.Suffix
	}
	return g, nil
}

// Entry pairs a bar diameter with the grade used for it.
type Entry struct {
	Diameter Diameter `json:"diameter"`
	Grade    Grade    `json:"grade"`
}

// Table reads the reinforcement strength list of c, ordered by bar size.
// Entries that fail to parse are left out and reported in the error, which
// is a stberrors.ErrorList.
func Table(c stb.Common) ([]Entry, error) {
	var (
		entries []Entry
		errs    stberrors.ErrorList
	)
	for _, d := range lo.Keys(c.ReinforcementStrength) {
		dia, err := ParseDiameter(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		grade, err := ParseGrade(c.ReinforcementStrength[d])
		if err != nil {
			errs = append(errs, stberrors.Wrapf(err, "bar %s", d))
			continue
		}
		entries = append(entries, Entry{Diameter: dia, Grade: grade})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.Diameter.Size, b.Diameter.Size),
			cmp.Compare(a.Diameter.Prefix, b.Diameter.Prefix),
		)
	})
	if len(errs) > 0 {
		slices.SortFunc(errs, func(a, b error) int { return cmp.Compare(a.Error(), b.Error()) })
		return entries, errs
	}
	return entries, nil
}
