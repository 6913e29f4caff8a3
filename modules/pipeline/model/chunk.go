package model

import (
	"regexp"
	"strings"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
)

const maxChunkChars = 1000

var paragraphBreak = regexp.MustCompile(`\n\n+`)

var sectionKeywords = []struct {
	section  candidatemodel.SectionTag
	keywords []string
}{
	{candidatemodel.SectionEducation, []string{"education", "degree", "university", "college"}},
	{candidatemodel.SectionExperience, []string{"experience", "worked", "position", "company"}},
	{candidatemodel.SectionSkills, []string{"skill", "proficient", "expertise"}},
	{candidatemodel.SectionProjects, []string{"project"}},
	{candidatemodel.SectionCertification, []string{"certification", "certified"}},
}

// Chunk is one section-tagged span of résumé text, ready to be embedded.
type Chunk struct {
	Text    string
	Section candidatemodel.SectionTag
}

// ChunkText splits text by paragraph breaks, labels each paragraph by
// keyword heuristic, and further splits any paragraph longer than
// maxChunkChars at sentence boundaries. A single sentence longer than the
// cap is not split further and stays one chunk.
func ChunkText(text string) []Chunk {
	var chunks []Chunk
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		section := classifySection(paragraph)
		for _, piece := range splitToCap(paragraph) {
			chunks = append(chunks, Chunk{Text: piece, Section: section})
		}
	}
	return chunks
}

func classifySection(paragraph string) candidatemodel.SectionTag {
	lower := strings.ToLower(paragraph)
	for _, entry := range sectionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.section
			}
		}
	}
	return candidatemodel.SectionGeneral
}

// splitToCap re-splits a paragraph at sentence boundaries ". ",
// accumulating sentences until the next one would push the running chunk
// over maxChunkChars; a piece exceeds the cap only when one sentence alone
// does.
func splitToCap(paragraph string) []string {
	if len(paragraph) <= maxChunkChars {
		return []string{paragraph}
	}

	sentences := strings.Split(paragraph, ". ")
	var pieces []string
	var current strings.Builder
	for i, sentence := range sentences {
		candidate := sentence
		if i < len(sentences)-1 {
			candidate += ". "
		}
		if current.Len() > 0 && current.Len()+len(candidate) > maxChunkChars {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(candidate)
	}
	if current.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(current.String()))
	}
	return pieces
}
