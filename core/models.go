package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunks and other content-addressed
// entities. It is generated with content-based hashing so identical content
// always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentType identifies a corpus partition. Each partition holds one kind
// of source material and is indexed and searched independently.
type DocumentType string

const (
	// DocTypeAcademicPaper holds peer-reviewed papers and journal articles.
	DocTypeAcademicPaper DocumentType = "academic_paper"
	// DocTypeStandards holds normative standards text (WCAG, EN 301 549, Section 508).
	DocTypeStandards DocumentType = "standards"
	// DocTypeExpertBlog holds practitioner commentary and guidance posts.
	DocTypeExpertBlog DocumentType = "expert_blog"
	// DocTypeAuditTicket holds findings from accessibility audits.
	DocTypeAuditTicket DocumentType = "audit_ticket"
	// DocTypeTestingTranscript holds transcripts from assistive-technology test sessions.
	DocTypeTestingTranscript DocumentType = "testing_transcript"
	// DocTypeNewsletter holds newsletter and announcement content.
	DocTypeNewsletter DocumentType = "newsletter"
)

// AllDocumentTypes returns every known partition, in stable order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeAcademicPaper,
		DocTypeStandards,
		DocTypeExpertBlog,
		DocTypeAuditTicket,
		DocTypeTestingTranscript,
		DocTypeNewsletter,
	}
}

// Intent is the classified purpose of a query. It selects the expansion
// strategy and the partitions to search.
type Intent int

const (
	// IntentUnknown means no classification rule matched. It never blocks the
	// pipeline: routing falls back to all partitions.
	IntentUnknown Intent = iota
	// IntentResearch asks what studies or evidence show.
	IntentResearch
	// IntentStandards asks what a standard requires.
	IntentStandards
	// IntentImplementation asks how to build or fix something.
	IntentImplementation
	// IntentTesting asks how to test, or reports tester findings.
	IntentTesting
	// IntentNews asks for recent updates.
	IntentNews
)

var intentNames = map[Intent]string{
	IntentUnknown:        "unknown",
	IntentResearch:       "research",
	IntentStandards:      "standards",
	IntentImplementation: "implementation",
	IntentTesting:        "testing",
	IntentNews:           "news",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseIntent maps an intent name back to its value. Used for explicit
// intent overrides on requests.
func ParseIntent(name string) (Intent, bool) {
	for intent, n := range intentNames {
		if n == name {
			return intent, true
		}
	}
	return IntentUnknown, false
}

// RelationKind is the type of a directed ontology edge.
type RelationKind string

const (
	RelationSynonym    RelationKind = "synonym"
	RelationHyponym    RelationKind = "hyponym"
	RelationRelated    RelationKind = "related"
	RelationImplements RelationKind = "implements"
	RelationRequires   RelationKind = "requires"
	RelationAddresses  RelationKind = "addresses"
	RelationTestedBy   RelationKind = "tested_by"
)

// Provenance records how a query variant was derived from the original query.
type Provenance string

const (
	ProvenanceOriginal Provenance = "original"
	ProvenanceSynonym  Provenance = "synonym"
	ProvenanceHyponym  Provenance = "hyponym"
	ProvenanceRelated  Provenance = "related"
)

// Priority orders provenances for variant ranking. Lower is earlier.
func (p Provenance) Priority() int {
	switch p {
	case ProvenanceOriginal:
		return 0
	case ProvenanceSynonym:
		return 1
	case ProvenanceHyponym:
		return 2
	case ProvenanceRelated:
		return 3
	default:
		return 4
	}
}

// Query is one retrieval request as it enters the pipeline. Ephemeral:
// created per request, discarded after the response.
type Query struct {
	Text string
	// TypeFilter restricts the search to a single partition when non-empty.
	TypeFilter DocumentType
}

// QueryVariant is one search string derived from the original query.
type QueryVariant struct {
	Text       string
	Provenance Provenance
	// Term is the ontology term that produced this variant. Empty for the
	// original query.
	Term string
}

// ExpandedQuery is the original query plus its bounded, ordered variant set.
// The original query is always the first variant.
type ExpandedQuery struct {
	Query    Query
	Intent   Intent
	Variants []QueryVariant
}

// SourceMeta is the slice of index-owned document metadata the pipeline
// needs for scoring. Read-only.
type SourceMeta struct {
	AuthorID  string
	Published time.Time
	DocType   DocumentType
}

// Chunk is one indexed fragment of a source document, stored with its
// embedding vector in the partition named by Meta.DocType. The ID is
// content-based: re-ingesting identical text is idempotent.
type Chunk struct {
	ID         ID
	DocumentID string
	Text       string
	Vector     []float32
	Meta       SourceMeta
	InsertedAt time.Time
}

// DocumentHit is the result of one (variant, partition) search.
type DocumentHit struct {
	DocumentID string
	ChunkID    ID
	// Similarity is the raw semantic similarity in [0,1].
	Similarity float64
	Partition  DocumentType
	Provenance Provenance
	Meta       SourceMeta
}

// AuthorityRecord maps an author or source to a trust level.
type AuthorityRecord struct {
	AuthorID string
	// Level is the authority score, 1 (community) to 5 (normative).
	Level int
	// Expertise lists the areas the author is recognised in.
	Expertise []string
}

// RankedResult is a DocumentHit enriched with its final composite score and
// the provenances that contributed to its retrieval. Immutable once produced.
type RankedResult struct {
	Hit       DocumentHit
	Score     float64
	Authority int
	// Provenances is the union of variant provenances that retrieved this
	// chunk, in priority order.
	Provenances []Provenance
}
