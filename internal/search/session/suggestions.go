package session

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/querybuilder"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Suggestions samples memories whose tags or location match text and returns
// the most frequent tag, author, location and person values starting with
// it. It runs independently of Search and never fails: a failed sample only
// contributes nothing.
func (s *Session) Suggestions(ctx context.Context, text string) []memory.Suggestion {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	s.suggestGen++
	gen := s.suggestGen
	s.mu.Unlock()

	var suggestions []memory.Suggestion
	if len([]rune(text)) >= minSuggestionLength {
		suggestions = aggregateSuggestions(s.sampleSuggestions(ctx, text), text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.suggestGen {
		s.suggestions = suggestions
	}
	return append([]memory.Suggestion(nil), suggestions...)
}

func (s *Session) sampleSuggestions(ctx context.Context, text string) []memory.Memory {
	queries := [][]storage.Constraint{
		querybuilder.TagSuggestions(text, s.suggestionSample),
		querybuilder.LocationSuggestions(text, s.suggestionSample),
	}
	pages := make([]*storage.Page, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			page, err := s.store.Query(gctx, q)
			if err != nil {
				slog.Warn("Suggestion sample failed", "error", err, "text", text)
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var docs []memory.Memory
	for _, p := range pages {
		if p == nil {
			continue
		}
		for _, d := range p.Docs {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			docs = append(docs, d)
		}
	}
	return docs
}

func aggregateSuggestions(docs []memory.Memory, text string) []memory.Suggestion {
	prefix := strings.ToLower(text)
	type key struct {
		kind  memory.SuggestionKind
		value string
	}
	counts := make(map[key]int)
	add := func(kind memory.SuggestionKind, v string) {
		if v != "" && strings.HasPrefix(strings.ToLower(v), prefix) {
			counts[key{kind, v}]++
		}
	}

	for _, d := range docs {
		for _, t := range d.Tags {
			add(memory.SuggestionTag, t)
		}
		add(memory.SuggestionAuthor, d.Author.Name)
		add(memory.SuggestionLocation, d.Location)
		for _, p := range d.People {
			add(memory.SuggestionPerson, p)
		}
	}

	out := make([]memory.Suggestion, 0, len(counts))
	for k, c := range counts {
		out = append(out, memory.Suggestion{Kind: k.kind, Value: k.value, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func (s *Session) loadPopularTags(ctx context.Context) []memory.TagCount {
	page, err := s.store.Query(ctx, querybuilder.PopularTags(s.popularTagSample))
	if err != nil {
		slog.Warn("Failed to sample popular tags", "error", err)
		return nil
	}
	return countTags(page.Docs, MaxPopularTags)
}

func countTags(docs []memory.Memory, top int) []memory.TagCount {
	counts := make(map[string]int)
	for _, d := range docs {
		for _, t := range d.Tags {
			counts[t]++
		}
	}

	out := make([]memory.TagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, memory.TagCount{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}
