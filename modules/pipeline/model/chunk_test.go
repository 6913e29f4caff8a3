package model

import (
	"strings"
	"testing"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_TagsParagraphsByKeyword(t *testing.T) {
	text := "Studied computer science at a university.\n\nWorked as a backend engineer at Acme Corp for five years.\n\nProficient in Go and Python.\n\nBuilt a payment reconciliation project.\n\nAWS Certified Solutions Architect.\n\nEnjoys hiking on weekends."

	chunks := ChunkText(text)

	require.Len(t, chunks, 6)
	assert.Equal(t, candidatemodel.SectionEducation, chunks[0].Section)
	assert.Equal(t, candidatemodel.SectionExperience, chunks[1].Section)
	assert.Equal(t, candidatemodel.SectionSkills, chunks[2].Section)
	assert.Equal(t, candidatemodel.SectionProjects, chunks[3].Section)
	assert.Equal(t, candidatemodel.SectionCertification, chunks[4].Section)
	assert.Equal(t, candidatemodel.SectionGeneral, chunks[5].Section)
}

func TestChunkText_SplitsLongParagraphAtSentenceBoundaries(t *testing.T) {
	sentence := "This engineer worked on many systems and delivered reliable software. "
	long := strings.Repeat(sentence, 30)

	chunks := ChunkText(long)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 1000)
	}
}

func TestChunkText_SkipsEmptyParagraphs(t *testing.T) {
	chunks := ChunkText("one paragraph\n\n\n\nanother paragraph")
	assert.Len(t, chunks, 2)
}
