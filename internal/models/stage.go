package models

// SubmitInput is the Stage A input.
type SubmitInput struct {
	ScreeningID    string `json:"screeningId"`
	CorpusLocation string `json:"corpusLocation"`
}

// SubmitOutput is the Stage A output.
type SubmitOutput struct {
	JobIDs JobIDs `json:"jobIds"`
}

// PollOutput is the Stage B output. Status is COMPLETED or IN_PROGRESS;
// terminal failures are returned as errors instead.
type PollOutput struct {
	Status JobStatus `json:"status"`
	JobIDs JobIDs    `json:"jobIds"`
	// Statuses holds the normalized status of each job.
	Statuses map[JobType]JobStatus `json:"statuses,omitempty"`
}

// CombineInput is the Stage C input: the Stage A/B context of both sides.
type CombineInput struct {
	Question  SubmitOutput `json:"question"`
	Documents SubmitOutput `json:"documents"`
}

// JobContext records where each job type of one corpus wrote its output.
type JobContext struct {
	Entities OutputLocation `json:"entities"`
	ICD10CM  OutputLocation `json:"icd10CM"`
	RxNorm   OutputLocation `json:"rxNorm"`
}

// Get returns the output location for the given job type.
func (c JobContext) Get(t JobType) OutputLocation {
	switch t {
	case JobTypeEntities:
		return c.Entities
	case JobTypeICD10CM:
		return c.ICD10CM
	case JobTypeRxNorm:
		return c.RxNorm
	default:
		return OutputLocation{}
	}
}

// Set stores the output location for the given job type.
func (c *JobContext) Set(t JobType, loc OutputLocation) {
	switch t {
	case JobTypeEntities:
		c.Entities = loc
	case JobTypeICD10CM:
		c.ICD10CM = loc
	case JobTypeRxNorm:
		c.RxNorm = loc
	}
}

// QuestionResult holds the reference bundles resolved per PICO element.
type QuestionResult struct {
	P EntityBundle `json:"p"`
	I EntityBundle `json:"i"`
	C EntityBundle `json:"c"`
	O EntityBundle `json:"o"`
}

// Bundle returns the bundle for one PICO element.
func (q *QuestionResult) Bundle(t PicoType) *EntityBundle {
	switch t {
	case PicoP:
		return &q.P
	case PicoI:
		return &q.I
	case PicoC:
		return &q.C
	case PicoO:
		return &q.O
	default:
		return nil
	}
}

// Warning kinds emitted by Stage C.
const (
	WarningManifestStatus         = "manifest_status"
	WarningIdentifierMismatch     = "identifier_mismatch"
	WarningUnknownQuestionSegment = "unknown_question_segment"
)

// Warning is a non-fatal condition observed while combining job outputs.
type Warning struct {
	Kind    string  `json:"kind"`
	Side    string  `json:"side"`
	JobType JobType `json:"jobType,omitempty"`
	Message string  `json:"message"`
}

// CombineOutput is the Stage C output.
type CombineOutput struct {
	QuestionResult      QuestionResult `json:"questionResult"`
	DocumentJobContext  JobContext     `json:"documentJobContext"`
	DocumentIdentifiers []string       `json:"documentIdentifiers"`
	Warnings            []Warning      `json:"warnings,omitempty"`
}

// ScoreFailure records a document that could not be scored.
type ScoreFailure struct {
	DocumentID string `json:"documentId"`
	Error      string `json:"error"`
}

// ScoreAllOutput is the result of scoring a whole corpus. Results follow the
// order of DocumentIdentifiers and skip the documents listed in Failures.
type ScoreAllOutput struct {
	Results  []PicoProximityAverage `json:"results"`
	Failures []ScoreFailure         `json:"failures,omitempty"`
}

// ScoreInput is the Stage D input.
type ScoreInput struct {
	DocumentIdentifier string        `json:"documentIdentifier"`
	Context            CombineOutput `json:"context"`
}
