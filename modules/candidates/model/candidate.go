package model

import "time"

// StorageType records where a candidate's raw résumé bytes live.
type StorageType string

const (
	// StorageInline keeps ResumeBytes in the candidate row itself.
	StorageInline StorageType = "inline"
	// StorageS3 means the bytes live in object storage under StorageKey;
	// ResumeBytes is empty on the row and is fetched through BlobStore.
	StorageS3 StorageType = "s3"
)

// Candidate is the record created by the résumé pipeline on successful
// extraction. It is mutated by the enrichment/matching subsystems only
// indirectly, through linked profile and match rows.
type Candidate struct {
	ID                 string
	Name               string
	Email              string
	Phone              string
	Skills             string
	DomainKnowledge    string
	AcademicBackground string
	YearsOfExperience  float64
	ResumeBytes        []byte
	StorageType        StorageType
	StorageKey         string
	ResumeFilename     string
	ResumeText         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SectionTag labels a résumé chunk by the kind of content it holds.
type SectionTag string

const (
	SectionEducation     SectionTag = "education"
	SectionExperience    SectionTag = "experience"
	SectionSkills        SectionTag = "skills"
	SectionProjects      SectionTag = "projects"
	SectionCertification SectionTag = "certifications"
	SectionGeneral       SectionTag = "general"
)

// ResumeEmbedding is one chunk of a candidate's résumé text paired with its
// embedding vector. Owned 1-to-many by Candidate; the whole set is replaced
// atomically on re-ingest.
type ResumeEmbedding struct {
	ID          string
	CandidateID string
	Chunk       string
	Vector      []float32
	Section     SectionTag
	CreatedAt   time.Time
}
