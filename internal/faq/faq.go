package faq

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

type Entry struct {
	Question string
	Answer   string
}

type Source interface {
	ListFAQs(ctx context.Context) ([]Entry, error)
}

// Retriever ranks FAQ answers by token overlap with the question. It stands
// in for a semantic index; ranking quality is not a goal.
type Retriever struct {
	mu      sync.RWMutex
	entries []indexedEntry
}

type indexedEntry struct {
	answer string
	tokens map[string]struct{}
}

func NewRetriever() *Retriever {
	return &Retriever{}
}

// LoadFrom replaces the index with the rows returned by source.
func (r *Retriever) LoadFrom(ctx context.Context, source Source) (int, error) {
	entries, err := source.ListFAQs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list faqs: %w", err)
	}
	r.Load(entries)
	return len(entries), nil
}

func (r *Retriever) Load(entries []Entry) {
	indexed := make([]indexedEntry, 0, len(entries))
	for _, entry := range entries {
		indexed = append(indexed, indexedEntry{
			answer: entry.Answer,
			tokens: tokenSet(entry.Question + " " + entry.Answer),
		})
	}
	r.mu.Lock()
	r.entries = indexed
	r.mu.Unlock()
}

func (r *Retriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Retrieve returns up to k answers; ties keep load order.
func (r *Retriever) Retrieve(question string, k int) []string {
	if k <= 0 {
		return nil
	}
	query := tokenSet(question)

	r.mu.RLock()
	type scored struct {
		index int
		score int
	}
	candidates := make([]scored, 0, len(r.entries))
	for i, entry := range r.entries {
		score := 0
		for token := range query {
			if _, ok := entry.tokens[token]; ok {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{index: i, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	answers := make([]string, 0, len(candidates))
	for _, c := range candidates {
		answers = append(answers, r.entries[c.index].answer)
	}
	r.mu.RUnlock()
	return answers
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "what": {}, "how": {},
	"of": {}, "to": {}, "in": {}, "for": {}, "on": {}, "do": {}, "i": {}, "my": {},
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, stop := stopWords[field]; stop {
			continue
		}
		set[field] = struct{}{}
	}
	return set
}
