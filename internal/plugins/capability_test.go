package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityIndexByCategoryAndTags(t *testing.T) {
	idx := NewCapabilityIndex()
	idx.Put(Capability{
		Name: "calc_matrix_determinant", Description: "Compute the determinant of a matrix",
		Category: CategoryLinearAlgebra, Tags: []string{"matrix", "linear algebra"},
		Complexity: ComplexityAdvanced,
	})
	idx.Put(Capability{
		Name: "calc_add", Description: "Add two numbers",
		Category: CategoryMathematics, Tags: []string{"math", "calculate"},
		Complexity: ComplexitySimple,
	})

	assert.ElementsMatch(t, []string{"calc_matrix_determinant"}, idx.ByCategory(CategoryLinearAlgebra))
	assert.ElementsMatch(t, []string{"calc_add"}, idx.ByTags([]string{"calculate"}))
}

func TestCapabilityIndexSearchRanksByRelevance(t *testing.T) {
	idx := NewCapabilityIndex()
	idx.Put(Capability{Name: "calc_matrix_determinant", Description: "Compute the determinant of a matrix", Category: CategoryLinearAlgebra})
	idx.Put(Capability{Name: "websearch_search_web", Description: "Search the web via DuckDuckGo", Category: CategoryNetwork})

	results := idx.Search("matrix")
	require.NotEmpty(t, results)
	assert.Equal(t, "calc_matrix_determinant", results[0].Name)
}

func TestCapabilityIndexRemove(t *testing.T) {
	idx := NewCapabilityIndex()
	idx.Put(Capability{Name: "tool_a", Category: CategoryUtilities, Tags: []string{"x"}})
	idx.Remove("tool_a")
	assert.Empty(t, idx.ByCategory(CategoryUtilities))
	assert.Empty(t, idx.ByTags([]string{"x"}))
}

func TestInferCategoryAndComplexity(t *testing.T) {
	assert.Equal(t, CategoryCalculus, InferCategory("Differentiate a function symbolically"))
	assert.Equal(t, CategoryFileOps, InferCategory("Read a file from the workspace"))
	assert.Equal(t, ComplexityAdvanced, InferComplexity("Advanced statistics and regression"))
	assert.Equal(t, ComplexitySimple, InferComplexity("Basic status check"))
}

func TestSummarize(t *testing.T) {
	idx := NewCapabilityIndex()
	idx.Put(Capability{Name: "a", Category: CategoryMathematics, Complexity: ComplexitySimple})
	idx.Put(Capability{Name: "b", Category: CategoryMathematics, Complexity: ComplexityAdvanced})

	summary := idx.Summarize()
	assert.Equal(t, 2, summary.TotalTools)
	assert.Equal(t, 2, summary.Categories[CategoryMathematics])
}
