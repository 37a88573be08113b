// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUntraceableCitation is returned by Verify when a document cites a
// paper outside its contributing set.
var ErrUntraceableCitation = errors.New("citation outside contributing papers")

// citationPattern matches inline citation labels: "PMID: 123" or "ID: 4".
var citationPattern = regexp.MustCompile(`\b(PMID|ID): ?([^\s,;)]+)`)

// labelPattern matches a citation label prefix in free text, including any
// run of colons and spaces after it.
var labelPattern = regexp.MustCompile(`\b(PMID|ID)[\s:]*:`)

// CitedKeys returns the distinct citation labels in markdown, normalized to
// "PMID: x" / "ID: x", in first-seen order. A trailing sentence period is
// not part of the identifier.
func CitedKeys(markdown string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range citationPattern.FindAllStringSubmatch(markdown, -1) {
		id := strings.TrimRight(m[2], ".")
		if id == "" {
			continue
		}
		key := m[1] + ": " + id
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Verify checks that every citation in the document's markdown names one of
// its contributing papers.
func Verify(doc Document) error {
	known := make(map[string]bool, len(doc.CitationKeys))
	for _, k := range doc.CitationKeys {
		// Scan the label itself so identifiers normalize the same way
		// they do in markdown.
		for _, ck := range CitedKeys(k) {
			known[ck] = true
		}
	}
	var unknown []string
	for _, k := range CitedKeys(doc.Markdown) {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("domain %s: %w: %s", doc.Domain, ErrUntraceableCitation, strings.Join(unknown, ", "))
}

// sanitize flattens free text to one line and defuses anything that reads
// as a citation label, so only the synthesizer emits citations.
func sanitize(s string) string {
	s = labelPattern.ReplaceAllString(s, "$1 ")
	return strings.Join(strings.Fields(s), " ")
}
