// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// abstractPage is the page label of everything derived from the abstract.
const abstractPage = "abstract"

// Keyword sets are matched as lowercase substrings of a sentence.
var (
	contributionKeywords = []string{"propose", "develop", "demonstrate", "show", "achieve", "improve", "introduce"}
	quoteKeywords        = []string{"demonstrate", "show", "prove", "found", "discovered", "achieved"}
)

// methodStopwords are capitalized words never reported as methods.
var methodStopwords = map[string]bool{
	"The": true, "This": true, "We": true, "Our": true,
	"Results": true, "Methods": true, "Figure": true, "Table": true,
}

// Stat patterns over abstract text.
var (
	// equalityRe matches "metric = value" and "metric: value".
	equalityRe = regexp.MustCompile(`(\w+)\s*[=:]\s*([\d.]+%?)`)

	// valueFirstRe matches a number immediately followed by a word, as in
	// "95% accuracy".
	valueFirstRe = regexp.MustCompile(`([\d.]+%?)\s*([A-Za-z]\w*)`)

	// pValueRe matches explicit p-value comparisons like "p < 0.05".
	pValueRe = regexp.MustCompile(`(?i)\bp\s*[<>=]\s*([\d.]+(?:e-?\d+)?)`)

	// methodRe matches a capitalized token, optionally hyphen-joined to
	// further capitalized tokens ("U-Net", "GraphSAGE").
	methodRe = regexp.MustCompile(`[A-Z][A-Za-z]*(?:-[A-Z][A-Za-z]*)*`)
)

// HighLevel derives the summary level. The main claim is the title, the
// novelty is the first abstract sentence, and the contribution is the
// first abstract sentence framed as a method or result. An empty abstract
// yields empty novelty and contribution.
func HighLevel(p types.Paper) types.HighLevel {
	hl := types.HighLevel{MainClaim: strings.TrimSpace(p.Title)}
	abstract := strings.TrimSpace(p.Abstract)
	if abstract == "" {
		return hl
	}

	if i := strings.IndexAny(abstract, ".!?"); i >= 0 {
		hl.Novelty = strings.TrimSpace(abstract[:i+1])
	} else {
		hl.Novelty = abstract
	}

	for _, s := range strings.FieldsFunc(abstract, isTerminator) {
		if containsAny(strings.ToLower(s), contributionKeywords) {
			hl.Contribution = strings.TrimSpace(s)
			break
		}
	}
	return hl
}

// MidLevel runs the statistics and method passes over the abstract.
func MidLevel(p types.Paper) types.MidLevel {
	return types.MidLevel{
		Stats:   Stats(p.Abstract),
		Methods: Methods(p.Abstract),
	}
}

// Stats matches the equality, value-first, and p-value shapes, in that
// order. Matches whose value does not parse as a number are dropped.
func Stats(text string) []types.Stat {
	stats := []types.Stat{}

	for _, m := range equalityRe.FindAllStringSubmatchIndex(text, -1) {
		v, ok := parseValue(text[m[4]:m[5]])
		if !ok {
			continue
		}
		stats = append(stats, types.Stat{
			Type:    "performance",
			Metric:  text[m[2]:m[3]],
			Value:   v,
			Context: extractContext(text, m[0], m[1]),
			Page:    abstractPage,
		})
	}

	for _, m := range valueFirstRe.FindAllStringSubmatchIndex(text, -1) {
		v, ok := parseValue(text[m[2]:m[3]])
		if !ok {
			continue
		}
		stats = append(stats, types.Stat{
			Type:    "measurement",
			Metric:  text[m[4]:m[5]],
			Value:   v,
			Context: extractContext(text, m[0], m[1]),
			Page:    abstractPage,
		})
	}

	for _, m := range pValueRe.FindAllStringSubmatchIndex(text, -1) {
		v, ok := parseValue(text[m[2]:m[3]])
		if !ok {
			continue
		}
		stats = append(stats, types.Stat{
			Type:    "p-value",
			Metric:  "statistical significance",
			Value:   v,
			Context: extractContext(text, m[0], m[1]),
			Page:    abstractPage,
		})
	}
	return stats
}

// Methods returns candidate method names: capitalized token runs that
// neither start the text nor follow a sentence break, minus stopwords,
// deduplicated in first-seen order. The heuristic overmatches on
// acronyms and incidental capitals; callers relying on exact output
// compare against the rule-based-v1 tag.
func Methods(text string) []types.Method {
	methods := []types.Method{}
	seen := make(map[string]bool)

	for pos := 0; pos < len(text); {
		loc := methodRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if start == 0 || followsSentenceBreak(text, start) {
			// Retry one byte later so a capital inside the rejected
			// token can still start a match.
			pos = start + 1
			continue
		}
		pos = end

		name := text[start:end]
		if methodStopwords[name] || seen[name] {
			continue
		}
		seen[name] = true
		methods = append(methods, types.Method{
			Name:       name,
			Parameters: map[string]string{},
			Page:       abstractPage,
		})
	}
	return methods
}

// LowLevel quotes every abstract sentence that carries a claim keyword.
func LowLevel(p types.Paper) types.LowLevel {
	ll := types.LowLevel{Quotes: []types.Quote{}}
	for i, s := range splitSentences(p.Abstract) {
		if !containsAny(strings.ToLower(s), quoteKeywords) {
			continue
		}
		ll.Quotes = append(ll.Quotes, types.Quote{
			Text:    s,
			Page:    abstractPage,
			Section: "Abstract",
			Context: fmt.Sprintf("Sentence %d of abstract", i+1),
		})
	}
	return ll
}

// CodeMethods is empty at this tier: abstracts carry no code. The lists
// are always present.
func CodeMethods(types.Paper) types.CodeMethods {
	return types.CodeMethods{
		Algorithms:      []string{},
		Equations:       []string{},
		Hyperparameters: []string{},
	}
}

// splitSentences splits text after '.', '!' or '?' when followed by
// whitespace. Sentences keep their terminator.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if !isTerminator(rune(text[i])) || !isSpace(text[i+1]) {
			continue
		}
		out = append(out, strings.TrimSpace(text[start:i+1]))
		start = i + 1
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// extractContext returns the match plus up to 40 characters either side,
// trimmed to word boundaries.
func extractContext(text string, start, end int) string {
	const window = 40
	ctxStart := max(start-window, 0)
	ctxEnd := min(end+window, len(text))
	snippet := text[ctxStart:ctxEnd]
	if ctxStart > 0 {
		if i := strings.IndexByte(snippet, ' '); i >= 0 && i < start-ctxStart {
			snippet = snippet[i+1:]
		}
	}
	if ctxEnd < len(text) {
		if i := strings.LastIndexByte(snippet, ' '); i >= 0 && i >= len(snippet)-(ctxEnd-end) {
			snippet = snippet[:i]
		}
	}
	return strings.TrimSpace(snippet)
}

func followsSentenceBreak(text string, i int) bool {
	return i >= 2 && text[i-2] == '.' && isSpace(text[i-1])
}

// parseValue parses a matched number, dropping a percent sign and any
// sentence-ending periods the greedy match picked up.
func parseValue(s string) (float64, bool) {
	s = strings.TrimRight(strings.TrimSuffix(s, "%"), ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
