package model

import "time"

// JobRequirement is a job requisition the matching engine scores candidates
// against. Owned by an upstream CRUD surface; this core reads it only.
type JobRequirement struct {
	ID                 string
	Title              string
	Description        string
	RequiredSkills     string
	RequiredEducation  string
	DomainRequirements string
	MinYears           float64
	MaxYears           float64
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MatchText is the space-joined concatenation of the fields the enrichment
// service ranks external-profile relevance against; case is left as stored.
func (j *JobRequirement) MatchText() string {
	return j.Title + " " + j.Description + " " + j.RequiredSkills + " " + j.DomainRequirements
}
