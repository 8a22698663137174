package plugins

import (
	"sort"
	"strings"
)

// Category is one of the closed set of capability categories a tool
// can be tagged with.
type Category string

const (
	CategoryMathematics    Category = "mathematics"
	CategoryStatistics     Category = "statistics"
	CategoryLinearAlgebra  Category = "linear-algebra"
	CategoryCalculus       Category = "calculus"
	CategoryNumberTheory   Category = "number-theory"
	CategoryDataProcessing Category = "data-processing"
	CategoryFileOps        Category = "file-ops"
	CategoryNetwork        Category = "network"
	CategoryDatabase       Category = "database"
	CategoryAIML           Category = "ai-ml"
	CategoryUtilities      Category = "utilities"
)

// Complexity is an inferred difficulty label for a tool.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityAdvanced Complexity = "advanced"
)

// Capability is one registered tool's discovery metadata.
type Capability struct {
	Name        string
	Description string
	Category    Category
	Tags        []string
	Complexity  Complexity
	InputTypes  []string
	OutputTypes []string
}

func (c Capability) searchableText() string {
	parts := []string{c.Name, c.Description, string(c.Category), string(c.Complexity)}
	parts = append(parts, c.Tags...)
	parts = append(parts, c.InputTypes...)
	parts = append(parts, c.OutputTypes...)
	return strings.ToLower(strings.Join(parts, " "))
}

// CapabilityIndex supports discovery by category, tag, input/output
// shape, and natural-language relevance scoring.
type CapabilityIndex struct {
	byName     map[string]Capability
	byCategory map[Category][]string
	byTag      map[string][]string
}

// NewCapabilityIndex constructs an empty index.
func NewCapabilityIndex() *CapabilityIndex {
	return &CapabilityIndex{
		byName:     make(map[string]Capability),
		byCategory: make(map[Category][]string),
		byTag:      make(map[string][]string),
	}
}

// Put registers or replaces a tool's capability metadata.
func (idx *CapabilityIndex) Put(c Capability) {
	idx.byName[c.Name] = c
	idx.byCategory[c.Category] = appendUnique(idx.byCategory[c.Category], c.Name)
	for _, tag := range c.Tags {
		idx.byTag[tag] = appendUnique(idx.byTag[tag], c.Name)
	}
}

// Remove drops a tool's capability metadata, e.g. when its source
// file is deleted.
func (idx *CapabilityIndex) Remove(name string) {
	c, ok := idx.byName[name]
	if !ok {
		return
	}
	delete(idx.byName, name)
	idx.byCategory[c.Category] = removeName(idx.byCategory[c.Category], name)
	for _, tag := range c.Tags {
		idx.byTag[tag] = removeName(idx.byTag[tag], name)
	}
}

// ByCategory returns every tool name tagged with category.
func (idx *CapabilityIndex) ByCategory(category Category) []string {
	return append([]string(nil), idx.byCategory[category]...)
}

// ByTags returns the union of tool names carrying any of tags.
func (idx *CapabilityIndex) ByTags(tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		for _, name := range idx.byTag[tag] {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// ByInputOutput returns tool names whose declared input and output
// types intersect the requested sets.
func (idx *CapabilityIndex) ByInputOutput(inputTypes, outputTypes []string) []string {
	var out []string
	for name, c := range idx.byName {
		if intersects(c.InputTypes, inputTypes) && intersects(c.OutputTypes, outputTypes) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ScoredTool is one hit from a natural-language capability search.
type ScoredTool struct {
	Name  string
	Score float64
}

// Search scores every registered tool against query by word overlap
// plus weighted substring matches, returning hits in descending score
// order. Zero-score tools are omitted.
func (idx *CapabilityIndex) Search(query string) []ScoredTool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	queryWords := wordSet(q)

	var results []ScoredTool
	for name, c := range idx.byName {
		score := 0.0
		if strings.Contains(strings.ToLower(c.Name), q) {
			score += 10.0
		}
		if strings.Contains(strings.ToLower(c.Description), q) {
			score += 8.0
		}
		if strings.Contains(strings.ToLower(string(c.Category)), q) {
			score += 5.0
		}
		for _, tag := range c.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				score += 3.0
			}
		}
		textWords := wordSet(c.searchableText())
		score += float64(len(intersectWords(queryWords, textWords)))

		if score > 0 {
			results = append(results, ScoredTool{Name: name, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	return results
}

// Summary aggregates counts for the discovery index.
type Summary struct {
	TotalTools             int
	Categories             map[Category]int
	Tags                   map[string]int
	ComplexityDistribution map[Complexity]int
}

// Summarize builds a point-in-time snapshot of the index.
func (idx *CapabilityIndex) Summarize() Summary {
	s := Summary{
		Categories:             make(map[Category]int),
		Tags:                   make(map[string]int),
		ComplexityDistribution: make(map[Complexity]int),
	}
	for category, names := range idx.byCategory {
		s.Categories[category] = len(names)
	}
	for tag, names := range idx.byTag {
		s.Tags[tag] = len(names)
	}
	for _, c := range idx.byName {
		s.TotalTools++
		s.ComplexityDistribution[c.Complexity]++
	}
	return s
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}

func removeName(list []string, name string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != name {
			out = append(out, existing)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func intersectWords(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range a {
		if _, ok := b[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}

// InferCategory maps a tool description's keywords to a closed
// category, defaulting to utilities.
func InferCategory(description string) Category {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "matrix", "determinant", "eigenvalue", "linear algebra"):
		return CategoryLinearAlgebra
	case containsAny(d, "integrate", "differentiate", "derivative", "calculus"):
		return CategoryCalculus
	case containsAny(d, "prime", "factorial", "gcd", "lcm", "number theory"):
		return CategoryNumberTheory
	case containsAny(d, "mean", "median", "variance", "stddev", "statistics", "distribution"):
		return CategoryStatistics
	case containsAny(d, "calculate", "solve", "compute", "math", "equation"):
		return CategoryMathematics
	case containsAny(d, "ssh", "remote", "git", "repository", "clone"):
		return CategoryNetwork
	case containsAny(d, "file", "directory", "read", "write", "list"):
		return CategoryFileOps
	case containsAny(d, "database", "query", "sql"):
		return CategoryDatabase
	case containsAny(d, "llm", "model", "embedding", "ai"):
		return CategoryAIML
	case containsAny(d, "csv", "json", "parse", "dataset", "data"):
		return CategoryDataProcessing
	default:
		return CategoryUtilities
	}
}

// InferComplexity maps a tool description's keywords to a complexity
// label, defaulting to moderate.
func InferComplexity(description string) Complexity {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "simple", "basic", "hello", "status"):
		return ComplexitySimple
	case containsAny(d, "advanced", "complex", "integration", "eigenvalue", "statistics"):
		return ComplexityAdvanced
	default:
		return ComplexityModerate
	}
}

// InferTags derives a tag set from a description by scanning a fixed
// vocabulary grouped by domain.
func InferTags(description string) []string {
	d := strings.ToLower(description)
	vocab := []string{
		"math", "mathematics", "calculate", "compute", "solve",
		"statistics", "analysis", "data", "mean", "median", "variance",
		"matrix", "linear algebra", "determinant", "eigenvalue",
		"integration", "differentiation", "calculus", "derivative",
		"file", "directory", "network", "ssh", "git", "search", "cache",
	}
	var tags []string
	for _, tag := range vocab {
		if strings.Contains(d, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
