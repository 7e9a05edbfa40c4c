package schema

// Node types in the repository tree.
const (
	NodeDir  = "dir"
	NodeFile = "file"
)

// StructureNode is a directory or file in the repository tree. Keys are
// short because the tree for a large repository is sent to a browser as-is.
type StructureNode struct {
	Name     string           `json:"n"`
	Path     string           `json:"p"`
	Type     string           `json:"t"`
	Children []*StructureNode `json:"ch,omitempty"`

	// Directories only.
	NumberOfFiles  int     `json:"nf,omitempty"`
	AverageCommits float64 `json:"acm,omitempty"`

	// Both; for directories the sum over descendants.
	LinesOfCode int `json:"loc,omitempty"`

	// Files only.
	FileType            string   `json:"ft,omitempty"`
	FileSize            string   `json:"fs,omitempty"`
	Commits             int      `json:"cm,omitempty"`
	CommitsHotSpot      int      `json:"chs,omitempty"`
	CommitsLastYear     int      `json:"cly,omitempty"`
	FirstCommitDate     string   `json:"fcd,omitempty"`
	LastCommitDate      string   `json:"lcd,omitempty"`
	LeadAuthor          *string  `json:"la,omitempty"`
	LeadAuthorKnowledge *float64 `json:"lak,omitempty"`
	Contributors        *int     `json:"ct,omitempty"`
	ActiveContributors  *int     `json:"act,omitempty"`
	Height              *float64 `json:"h,omitempty"`
	Width               *float64 `json:"w,omitempty"`
}

// ReferenceData carries the run-wide maxima used to normalize the tree.
type ReferenceData struct {
	MaxCommits        int `json:"mc"`
	MaxCommitsHotSpot int `json:"mchs"`
	MaxLinesOfCode    int `json:"mloc"`
}

// StructureResponse is the tree plus its reference data.
type StructureResponse struct {
	Structure *StructureNode `json:"structure"`
	RefData   ReferenceData  `json:"refdata"`
}
