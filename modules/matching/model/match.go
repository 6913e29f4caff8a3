package model

import "time"

// CandidateMatch is one (candidate, job) scoring row, upserted by the
// matching engine on every run for that pair.
type CandidateMatch struct {
	ID                string
	CandidateID       string
	JobID             string
	MatchScore        int
	SkillsScore       int
	ExperienceScore   int
	EducationScore    int
	DomainScore       int
	Explanation       string
	Strengths         []string
	Gaps              []string
	Recommendation    string
	IsShortlisted     bool
	IsSelected        bool
	RecruiterNote     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ShortlistThreshold is the minimum aggregate score that auto-shortlists a
// match, unless it is already selected.
const ShortlistThreshold = 70

// ApplyAutoShortlist sets IsShortlisted per the auto-shortlist rule, unless
// the row has already been selected by a recruiter.
func (m *CandidateMatch) ApplyAutoShortlist() {
	if m.IsSelected {
		return
	}
	if m.MatchScore >= ShortlistThreshold {
		m.IsShortlisted = true
	}
}

// AuditStatus is the lifecycle of a batch match run.
type AuditStatus string

const (
	AuditInProgress AuditStatus = "IN_PROGRESS"
	AuditCompleted  AuditStatus = "COMPLETED"
	AuditFailed     AuditStatus = "FAILED"
)

// CandidateSummary is one entry of a MatchAudit's compact per-candidate
// summary blob.
type CandidateSummary struct {
	CandidateID   string `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	MatchScore    int    `json:"matchScore"`
	SkillsScore   int    `json:"skillsScore"`
	IsShortlisted bool   `json:"isShortlisted"`
}

// MatchAudit records one matchAllForJob batch run, created synchronously
// at IN_PROGRESS and completed or failed asynchronously once the batch
// finishes.
type MatchAudit struct {
	ID                 string
	JobID              string
	JobTitleSnapshot   string
	Status             AuditStatus
	CandidatesMatched  int
	Shortlisted        int
	AverageScore       float64
	TopScore           int
	DurationMs         int64
	EstimatedTokens    int64
	InitiatedBy        string
	InitiatedAt        time.Time
	CompletedAt        *time.Time
	ErrorMessage        string
	CandidateSummaries []CandidateSummary
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
