package model

// EvidenceSource records what kind of evidence produced a company assignment.
type EvidenceSource string

const (
	EvidenceFilename EvidenceSource = "filename"
	EvidenceData     EvidenceSource = "data"
	EvidenceDefault  EvidenceSource = "default"
)

// CompanyAssignment ties one uploaded file to a configured company. Created
// by the detection stage; the user may override Company before processing,
// but it must always name a company present in the configured list.
type CompanyAssignment struct {
	FileName       string         `json:"file_name"`
	Company        string         `json:"company"`
	Confidence     int            `json:"confidence"`
	EvidenceSource EvidenceSource `json:"evidence_source"`
}
