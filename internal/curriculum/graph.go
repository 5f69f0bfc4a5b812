package curriculum

import (
	"fmt"
	"slices"
	"sort"
)

// Graph holds the topic DAG with precomputed indices. The prerequisite
// structure is supplied by configuration; the engine itself never computes
// edges. Graphs are immutable after construction and safe for concurrent
// reads.
type Graph struct {
	topics     []Topic
	byID       map[string]*Topic
	byStrand   map[Strand][]Topic
	byGrade    map[int][]Topic
	roots      []Topic
	dependents map[string][]string
	topoOrder  []Topic
	topoIndex  map[string]int
}

// NewGraph constructs a graph from a slice of topics. It validates the
// structure (duplicate IDs, dangling prerequisites, cycles) and builds all
// indices including topological order (Kahn's algorithm).
func NewGraph(topics []Topic) (*Graph, error) {
	if err := validateTopics(topics); err != nil {
		return nil, err
	}

	g := &Graph{
		topics:     slices.Clone(topics),
		byID:       make(map[string]*Topic, len(topics)),
		byStrand:   make(map[Strand][]Topic),
		byGrade:    make(map[int][]Topic),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(topics)),
	}

	for i := range g.topics {
		g.byID[g.topics[i].ID] = &g.topics[i]
	}

	// Reverse edges.
	for i := range g.topics {
		for _, prereqID := range g.topics[i].Prerequisites {
			g.dependents[prereqID] = append(g.dependents[prereqID], g.topics[i].ID)
		}
	}

	// Topological sort (Kahn's algorithm).
	inDegree := make(map[string]int, len(topics))
	for i := range g.topics {
		inDegree[g.topics[i].ID] = len(g.topics[i].Prerequisites)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering.
	sort.Strings(queue)

	var topoOrder []Topic
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		topoOrder = append(topoOrder, *g.byID[id])

		deps := g.dependents[id]
		sorted := make([]string, len(deps))
		copy(sorted, deps)
		sort.Strings(sorted)
		for _, depID := range sorted {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	g.topoOrder = topoOrder
	for i, t := range g.topoOrder {
		g.topoIndex[t.ID] = i
	}

	for i := range g.topics {
		if len(g.topics[i].Prerequisites) == 0 {
			g.roots = append(g.roots, g.topics[i])
		}
	}

	// Group by strand, sorted by grade asc then topo index.
	for i := range g.topics {
		t := g.topics[i]
		g.byStrand[t.Strand] = append(g.byStrand[t.Strand], t)
	}
	for strand, ts := range g.byStrand {
		sorted := slices.Clone(ts)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].Grade != sorted[j].Grade {
				return sorted[i].Grade < sorted[j].Grade
			}
			return g.topoIndex[sorted[i].ID] < g.topoIndex[sorted[j].ID]
		})
		g.byStrand[strand] = sorted
	}

	// Group by grade, sorted by strand order then topo index.
	strandIdx := make(map[Strand]int)
	for i, s := range AllStrands() {
		strandIdx[s] = i
	}
	for i := range g.topics {
		t := g.topics[i]
		g.byGrade[t.Grade] = append(g.byGrade[t.Grade], t)
	}
	for grade, ts := range g.byGrade {
		sorted := slices.Clone(ts)
		sort.Slice(sorted, func(i, j int) bool {
			si := strandIdx[sorted[i].Strand]
			sj := strandIdx[sorted[j].Strand]
			if si != sj {
				return si < sj
			}
			return g.topoIndex[sorted[i].ID] < g.topoIndex[sorted[j].ID]
		})
		g.byGrade[grade] = sorted
	}

	return g, nil
}

// Topic returns a topic by ID, or an error if not found.
func (g *Graph) Topic(id string) (Topic, error) {
	t, ok := g.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("topic not found: %q", id)
	}
	return *t, nil
}

// Contains reports whether the graph has a topic with the given ID.
func (g *Graph) Contains(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Topics returns all topics in the graph.
func (g *Graph) Topics() []Topic {
	return slices.Clone(g.topics)
}

// ByStrand returns all topics in a strand, ordered by grade then topological position.
func (g *Graph) ByStrand(strand Strand) []Topic {
	return slices.Clone(g.byStrand[strand])
}

// ByGrade returns all topics for a grade, ordered by strand then topological position.
func (g *Graph) ByGrade(grade int) []Topic {
	return slices.Clone(g.byGrade[grade])
}

// Roots returns all topics with no prerequisites.
func (g *Graph) Roots() []Topic {
	return slices.Clone(g.roots)
}

// Prerequisites returns the direct prerequisite topics for a topic ID.
func (g *Graph) Prerequisites(id string) []Topic {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	result := make([]Topic, 0, len(t.Prerequisites))
	for _, prereqID := range t.Prerequisites {
		if p, ok := g.byID[prereqID]; ok {
			result = append(result, *p)
		}
	}
	return result
}

// Dependents returns topics that directly depend on the given topic ID.
func (g *Graph) Dependents(id string) []Topic {
	depIDs := g.dependents[id]
	result := make([]Topic, 0, len(depIDs))
	for _, depID := range depIDs {
		if t, ok := g.byID[depID]; ok {
			result = append(result, *t)
		}
	}
	return result
}

// IsUnlocked returns true if every prerequisite of the topic is in the
// mastered set. Unknown topic IDs are locked.
func (g *Graph) IsUnlocked(id string, mastered map[string]bool) bool {
	t, ok := g.byID[id]
	if !ok {
		return false
	}
	for _, prereqID := range t.Prerequisites {
		if !mastered[prereqID] {
			return false
		}
	}
	return true
}

// Available returns all topics that are unlocked but not yet mastered,
// in topological order.
func (g *Graph) Available(mastered map[string]bool) []Topic {
	var result []Topic
	for _, t := range g.topoOrder {
		if !mastered[t.ID] && g.IsUnlocked(t.ID, mastered) {
			result = append(result, t)
		}
	}
	return result
}

// Blocked returns all topics that have at least one unmastered prerequisite,
// in topological order.
func (g *Graph) Blocked(mastered map[string]bool) []Topic {
	var result []Topic
	for _, t := range g.topoOrder {
		if !g.IsUnlocked(t.ID, mastered) {
			result = append(result, t)
		}
	}
	return result
}

// UnmetPrerequisites returns the prerequisite IDs of a topic that are not in
// the mastered set.
func (g *Graph) UnmetPrerequisites(id string, mastered map[string]bool) []string {
	t, ok := g.byID[id]
	if !ok {
		return nil
	}
	var unmet []string
	for _, prereqID := range t.Prerequisites {
		if !mastered[prereqID] {
			unmet = append(unmet, prereqID)
		}
	}
	return unmet
}

// TopologicalOrder returns all topics in a valid topological order.
func (g *Graph) TopologicalOrder() []Topic {
	return slices.Clone(g.topoOrder)
}
