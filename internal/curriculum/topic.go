package curriculum

// Strand represents a math content strand.
type Strand string

const (
	StrandNumberSense Strand = "number-sense"
	StrandOperations  Strand = "operations"
	StrandFracDec     Strand = "fractions-and-decimals"
	StrandAlgebra     Strand = "algebra"
)

// AllStrands returns all strands in display order.
func AllStrands() []Strand {
	return []Strand{
		StrandNumberSense,
		StrandOperations,
		StrandFracDec,
		StrandAlgebra,
	}
}

// StrandDisplayName returns a human-readable name for a strand.
func StrandDisplayName(s Strand) string {
	switch s {
	case StrandNumberSense:
		return "Number Sense"
	case StrandOperations:
		return "Operations"
	case StrandFracDec:
		return "Fractions & Decimals"
	case StrandAlgebra:
		return "Algebra"
	default:
		return string(s)
	}
}

// GradeK is the grade value used for kindergarten. Grades run K through 12.
const (
	GradeK   = 0
	GradeMax = 12
)

// Topic represents a single teachable topic node in the prerequisite graph.
type Topic struct {
	ID            string
	Name          string
	Description   string
	Strand        Strand
	Grade         int
	Prerequisites []string
}
