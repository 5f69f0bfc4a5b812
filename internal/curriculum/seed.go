package curriculum

import (
	"fmt"
	"sync"
)

var (
	defaultOnce  sync.Once
	defaultGraph *Graph
)

// Default returns the built-in topic graph. Deployments with their own
// curriculum pass a custom topic set to NewGraph instead.
func Default() *Graph {
	defaultOnce.Do(func() {
		g, err := NewGraph(DefaultTopics())
		if err != nil {
			panic(fmt.Sprintf("curriculum: invalid default graph: %v", err))
		}
		defaultGraph = g
	})
	return defaultGraph
}

// DefaultTopics returns the built-in K-12 topic catalog. Every topic here is
// covered by the deterministic problem generators.
func DefaultTopics() []Topic {
	return []Topic{
		{
			ID:          "counting",
			Name:        "Counting",
			Description: "Counting forward, backward, and by steps.",
			Strand:      StrandNumberSense,
			Grade:       GradeK,
		},
		{
			ID:            "addition",
			Name:          "Addition",
			Description:   "Adding whole numbers.",
			Strand:        StrandOperations,
			Grade:         1,
			Prerequisites: []string{"counting"},
		},
		{
			ID:            "subtraction",
			Name:          "Subtraction",
			Description:   "Subtracting whole numbers.",
			Strand:        StrandOperations,
			Grade:         1,
			Prerequisites: []string{"addition"},
		},
		{
			ID:            "multiplication",
			Name:          "Multiplication",
			Description:   "Multiplying whole numbers.",
			Strand:        StrandOperations,
			Grade:         3,
			Prerequisites: []string{"addition"},
		},
		{
			ID:            "division",
			Name:          "Division",
			Description:   "Dividing whole numbers into equal groups.",
			Strand:        StrandOperations,
			Grade:         3,
			Prerequisites: []string{"multiplication", "subtraction"},
		},
		{
			ID:            "fractions",
			Name:          "Fractions",
			Description:   "Simplifying and adding fractions.",
			Strand:        StrandFracDec,
			Grade:         3,
			Prerequisites: []string{"division"},
		},
		{
			ID:            "decimals",
			Name:          "Decimals",
			Description:   "Adding and comparing decimal numbers.",
			Strand:        StrandFracDec,
			Grade:         4,
			Prerequisites: []string{"fractions"},
		},
		{
			ID:            "algebra",
			Name:          "Algebra",
			Description:   "Solving linear equations for an unknown.",
			Strand:        StrandAlgebra,
			Grade:         8,
			Prerequisites: []string{"subtraction", "division"},
		},
	}
}
