// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover matches free-text queries against the local corpus to
// build a run's candidate paper set. Matching favors recall: any query
// token found in a paper's title or owning professor's name makes the
// paper a match.
package discover

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// Corpus supplies candidate papers in a stable order.
type Corpus interface {
	Candidates(ctx context.Context) ([]types.Paper, error)
}

// Match is one discovered paper.
type Match struct {
	Query      string `json:"query"`
	Professor  string `json:"professor"`
	PaperID    int64  `json:"paper_id"`
	PaperTitle string `json:"paper_title"`
	Identifier string `json:"pmid,omitempty"`
	Domain     string `json:"domain,omitempty"`
	Score      int    `json:"score"`
}

// Result holds discovery counts and the ranked match list. Matches holds
// every match; TargetedMatches is its capped prefix.
type Result struct {
	ProfessorsAdded   int            `json:"professors_added"`
	PapersAdded       int            `json:"papers_added"`
	BreakdownByDomain map[string]int `json:"breakdown_by_domain"`
	TargetedMatches   []Match        `json:"targeted_matches"`
	Matches           []Match        `json:"-"`
}

// Discoverer runs targeted and broad discovery over a Corpus.
type Discoverer struct {
	corpus     Corpus
	maxMatches int
}

// New returns a Discoverer. cfg.MaxMatches caps the returned list only.
func New(c Corpus, cfg types.DiscoverConfig) *Discoverer {
	return &Discoverer{corpus: c, maxMatches: cfg.MaxMatches}
}

// Tokenize lowercases a query and splits it on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score counts the terms that occur as substrings of the paper title or
// of its professor's name. Repeated terms count each time.
func Score(terms []string, p types.Paper) int {
	title := strings.ToLower(p.Title)
	prof := strings.ToLower(p.ProfessorName)
	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) || (prof != "" && strings.Contains(prof, term)) {
			score++
		}
	}
	return score
}

// Targeted scores every candidate against every query. A paper matched by
// several queries appears once, at its first discovery position, with its
// highest score. Matches are ordered by descending score with ties kept in
// discovery order.
func (d *Discoverer) Targeted(ctx context.Context, queries []string) (Result, error) {
	papers, err := d.corpus.Candidates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading candidates: %w", err)
	}

	var matches []Match
	index := make(map[int64]int)
	for _, q := range queries {
		terms := Tokenize(q)
		if len(terms) == 0 {
			continue
		}
		for _, p := range papers {
			score := Score(terms, p)
			if score == 0 {
				continue
			}
			if i, ok := index[p.ID]; ok {
				if score > matches[i].Score {
					matches[i].Score = score
					matches[i].Query = q
				}
				continue
			}
			index[p.ID] = len(matches)
			matches = append(matches, Match{
				Query:      q,
				Professor:  p.ProfessorName,
				PaperID:    p.ID,
				PaperTitle: p.Title,
				Identifier: p.Identifier,
				Domain:     p.Domain,
				Score:      score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	res := Result{
		BreakdownByDomain: make(map[string]int),
		Matches:           nonNil(matches),
	}
	professors := make(map[int64]bool)
	for _, p := range papers {
		if _, ok := index[p.ID]; ok && p.ProfessorID != nil {
			professors[*p.ProfessorID] = true
		}
	}
	for _, m := range res.Matches {
		if m.Domain != "" {
			res.BreakdownByDomain[m.Domain]++
		}
	}
	res.ProfessorsAdded = len(professors)
	res.PapersAdded = len(res.Matches)

	res.TargetedMatches = res.Matches
	if d.maxMatches > 0 && len(res.TargetedMatches) > d.maxMatches {
		res.TargetedMatches = res.TargetedMatches[:d.maxMatches]
	}
	return res, nil
}

// Broad is domain-scoped discovery. External sources are not consulted, so
// it returns a valid empty result.
func (d *Discoverer) Broad(_ context.Context, _ []string) (Result, error) {
	return Result{
		BreakdownByDomain: map[string]int{},
		TargetedMatches:   []Match{},
		Matches:           []Match{},
	}, nil
}

// Candidates converts matches into the run candidate rows to persist.
func (r Result) Candidates() []types.RunCandidate {
	out := make([]types.RunCandidate, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = types.RunCandidate{PaperID: m.PaperID, Query: m.Query, Score: m.Score}
	}
	return out
}

func nonNil(m []Match) []Match {
	if m == nil {
		return []Match{}
	}
	return m
}
