package models

import (
	"fmt"
	"net/url"
	"strings"
)

// JobType identifies one of the three extraction jobs run per corpus.
type JobType string

const (
	JobTypeEntities JobType = "entities"
	JobTypeICD10CM  JobType = "icd10CM"
	JobTypeRxNorm   JobType = "rxNorm"
)

// JobTypes lists the job types in submission order.
var JobTypes = []JobType{JobTypeEntities, JobTypeICD10CM, JobTypeRxNorm}

// JobStatus is the state of an extraction job.
type JobStatus string

const (
	JobStatusSubmitted  JobStatus = "SUBMITTED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusStopped    JobStatus = "STOPPED"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusStopped
}

// JobIDs holds the three job ids submitted for one corpus.
type JobIDs struct {
	Entities string `json:"entities"`
	ICD10CM  string `json:"icd10CM"`
	RxNorm   string `json:"rxNorm"`
}

// Get returns the id for the given job type.
func (j JobIDs) Get(t JobType) string {
	switch t {
	case JobTypeEntities:
		return j.Entities
	case JobTypeICD10CM:
		return j.ICD10CM
	case JobTypeRxNorm:
		return j.RxNorm
	default:
		return ""
	}
}

// Set stores the id for the given job type.
func (j *JobIDs) Set(t JobType, id string) {
	switch t {
	case JobTypeEntities:
		j.Entities = id
	case JobTypeICD10CM:
		j.ICD10CM = id
	case JobTypeRxNorm:
		j.RxNorm = id
	}
}

// String formats the triple for error messages and logs.
func (j JobIDs) String() string {
	return fmt.Sprintf("entities=%s icd10CM=%s rxNorm=%s", j.Entities, j.ICD10CM, j.RxNorm)
}

// OutputLocation is where a completed job wrote its per-document results.
type OutputLocation struct {
	Bucket string `json:"Bucket"`
	Path   string `json:"Path"`
}

// Manifest is the completion record the service writes next to job output.
type Manifest struct {
	Summary *ManifestSummary `json:"Summary"`
}

// ManifestSummary is the part of the manifest this pipeline reads.
type ManifestSummary struct {
	Status                  string          `json:"Status"`
	JobType                 string          `json:"JobType,omitempty"`
	TotalDocuments          int             `json:"TotalDocuments,omitempty"`
	OutputDataConfiguration *OutputLocation `json:"OutputDataConfiguration"`
}

// ObjectLocation addresses a single object in object storage.
type ObjectLocation struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// String renders the location as an s3:// URI.
func (l ObjectLocation) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3URI parses s3://bucket/key into an ObjectLocation.
// The key may be empty when the URI names a bucket root.
func ParseS3URI(uri string) (ObjectLocation, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return ObjectLocation{}, fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return ObjectLocation{}, fmt.Errorf("not an s3 uri: %q", uri)
	}
	return ObjectLocation{
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// BundlePaths addresses the three result objects that make up one EntityBundle.
type BundlePaths struct {
	Entities ObjectLocation `json:"entities"`
	ICD10CM  ObjectLocation `json:"icd10CM"`
	RxNorm   ObjectLocation `json:"rxNorm"`
}
