package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/picoscreen/internal/comprehend"
	"github.com/raphaelgruber/picoscreen/internal/models"
	"github.com/raphaelgruber/picoscreen/internal/pico"
)

const (
	sideQuestion  = "question"
	sideDocuments = "documents"
)

// questionSegments maps question file base names to PICO elements.
var questionSegments = map[string]models.PicoType{
	"p":            models.PicoP,
	"population":   models.PicoP,
	"i":            models.PicoI,
	"intervention": models.PicoI,
	"c":            models.PicoC,
	"comparison":   models.PicoC,
	"comparator":   models.PicoC,
	"o":            models.PicoO,
	"outcome":      models.PicoO,
}

// questionSegment resolves an identifier such as "p.txt" or "q1/Outcome.txt".
func questionSegment(identifier string) (models.PicoType, bool) {
	base := path.Base(identifier)
	base = strings.TrimSuffix(base, path.Ext(base))
	t, ok := questionSegments[strings.ToLower(base)]
	return t, ok
}

// jobOutput is the resolved output of one completed job.
type jobOutput struct {
	location    models.OutputLocation
	identifiers []string
	warnings    []models.Warning
}

// sideOutput is the resolved output of the three jobs over one corpus.
type sideOutput struct {
	context     models.JobContext
	identifiers []string
	warnings    []models.Warning
}

// Combine resolves where both corpora's results live and loads the
// question's reference bundles (Stage C).
//
// Manifests that are not COMPLETED and job types that disagree on the
// document set are reported as warnings, logged and returned; the union of
// identifiers is used.
func (o *Orchestrator) Combine(ctx context.Context, in models.CombineInput) (models.CombineOutput, error) {
	for _, t := range models.JobTypes {
		if in.Question.JobIDs.Get(t) == "" {
			return models.CombineOutput{}, validationErrorf("%s %s job id is required", sideQuestion, t)
		}
		if in.Documents.JobIDs.Get(t) == "" {
			return models.CombineOutput{}, validationErrorf("%s %s job id is required", sideDocuments, t)
		}
	}

	var question, documents sideOutput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		question, err = o.resolveSide(gctx, sideQuestion, in.Question.JobIDs)
		return err
	})
	g.Go(func() (err error) {
		documents, err = o.resolveSide(gctx, sideDocuments, in.Documents.JobIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CombineOutput{}, err
	}

	result, segmentWarnings, err := o.readQuestion(ctx, question)
	if err != nil {
		return models.CombineOutput{}, err
	}

	warnings := slices.Concat(question.warnings, documents.warnings, segmentWarnings)
	for _, w := range warnings {
		o.logger.Warn(w.Message, "kind", w.Kind, "side", w.Side, "job_type", w.JobType)
	}

	o.logger.Info("job outputs combined",
		"question_segments", len(question.identifiers),
		"documents", len(documents.identifiers),
		"warnings", len(warnings))

	return models.CombineOutput{
		QuestionResult:      result,
		DocumentJobContext:  documents.context,
		DocumentIdentifiers: documents.identifiers,
		Warnings:            warnings,
	}, nil
}

func (o *Orchestrator) resolveSide(ctx context.Context, side string, ids models.JobIDs) (sideOutput, error) {
	outputs := make([]jobOutput, len(models.JobTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range models.JobTypes {
		g.Go(func() (err error) {
			outputs[i], err = o.resolveJob(gctx, side, t, ids.Get(t))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return sideOutput{}, err
	}

	var res sideOutput
	for i, t := range models.JobTypes {
		res.context.Set(t, outputs[i].location)
		res.warnings = append(res.warnings, outputs[i].warnings...)
	}

	res.identifiers = lo.Uniq(lo.FlatMap(outputs, func(j jobOutput, _ int) []string { return j.identifiers }))
	slices.Sort(res.identifiers)

	for i, t := range models.JobTypes {
		if n := len(lo.Uniq(outputs[i].identifiers)); n != len(res.identifiers) {
			res.warnings = append(res.warnings, models.Warning{
				Kind:    models.WarningIdentifierMismatch,
				Side:    side,
				JobType: t,
				Message: fmt.Sprintf("%s job produced results for %d of %d documents", t, n, len(res.identifiers)),
			})
		}
	}
	return res, nil
}

func (o *Orchestrator) resolveJob(ctx context.Context, side string, t models.JobType, jobID string) (jobOutput, error) {
	info, err := o.jobs.DescribeJob(ctx, t, jobID)
	if err != nil {
		return jobOutput{}, fmt.Errorf("describe %s %s job %s: %w", side, t, jobID, err)
	}
	if info.Output.Bucket == "" {
		return jobOutput{}, validationErrorf("%s %s job %s reports no output location", side, t, jobID)
	}

	manifestKey, err := o.locateManifest(ctx, info)
	if err != nil {
		return jobOutput{}, fmt.Errorf("locate %s %s manifest: %w", side, t, err)
	}
	body, err := o.store.GetObject(ctx, info.Output.Bucket, manifestKey)
	if err != nil {
		return jobOutput{}, fmt.Errorf("read %s %s manifest: %w", side, t, err)
	}
	summary, err := parseManifest(body)
	if err != nil {
		return jobOutput{}, fmt.Errorf("%s %s manifest s3://%s/%s: %w", side, t, info.Output.Bucket, manifestKey, err)
	}

	out := jobOutput{location: *summary.OutputDataConfiguration}
	if summary.Status != string(models.JobStatusCompleted) {
		out.warnings = append(out.warnings, models.Warning{
			Kind:    models.WarningManifestStatus,
			Side:    side,
			JobType: t,
			Message: fmt.Sprintf("%s job %s manifest status is %s", t, jobID, summary.Status),
		})
	}

	keys, err := o.store.ListKeys(ctx, out.location.Bucket, dirPrefix(out.location.Path), o.cfg.OutputSuffix)
	if err != nil {
		return jobOutput{}, fmt.Errorf("list %s %s results: %w", side, t, err)
	}
	out.identifiers = lo.Map(keys, func(k string, _ int) string {
		return identifierOf(k, out.location.Path, o.cfg.OutputSuffix)
	})
	return out, nil
}

// locateManifest finds the manifest a job wrote below its output folder.
// The service nests results in a folder named after the job, so a key
// containing the job id wins.
func (o *Orchestrator) locateManifest(ctx context.Context, info comprehend.JobInfo) (string, error) {
	keys, err := o.store.ListKeys(ctx, info.Output.Bucket, dirPrefix(info.Output.Key), o.cfg.ManifestName)
	if err != nil {
		return "", err
	}
	candidates := lo.Filter(keys, func(k string, _ int) bool { return path.Base(k) == o.cfg.ManifestName })
	if key, ok := lo.Find(candidates, func(k string) bool { return strings.Contains(k, info.ID) }); ok {
		return key, nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return path.Join(info.Output.Key, o.cfg.ManifestName), nil
}

func parseManifest(body []byte) (*models.ManifestSummary, error) {
	var m models.Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, validationErrorf("decode manifest: %v", err)
	}
	if m.Summary == nil {
		return nil, validationErrorf("manifest has no Summary")
	}
	loc := m.Summary.OutputDataConfiguration
	if loc == nil || loc.Bucket == "" {
		return nil, validationErrorf("manifest has no OutputDataConfiguration")
	}
	if strings.HasPrefix(loc.Path, "s3://") {
		parsed, err := models.ParseS3URI(loc.Path)
		if err != nil {
			return nil, validationErrorf("manifest output path: %v", err)
		}
		loc.Path = parsed.Key
	}
	return m.Summary, nil
}

// readQuestion loads the reference bundle of every recognised question segment.
func (o *Orchestrator) readQuestion(ctx context.Context, side sideOutput) (models.QuestionResult, []models.Warning, error) {
	var (
		result   models.QuestionResult
		warnings []models.Warning
	)
	for _, id := range side.identifiers {
		t, ok := questionSegment(id)
		if !ok {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarningUnknownQuestionSegment,
				Side:    sideQuestion,
				Message: fmt.Sprintf("question segment %q is not a PICO element", id),
			})
			continue
		}

		bundle, err := pico.ReadBundle(ctx, o.store, o.bundlePaths(side.context, id))
		if err != nil {
			return models.QuestionResult{}, nil, fmt.Errorf("read question segment %s: %w", id, err)
		}
		b := result.Bundle(t)
		b.Entities = append(b.Entities, bundle.Entities...)
		b.ID10CMs = append(b.ID10CMs, bundle.ID10CMs...)
		b.RxNorms = append(b.RxNorms, bundle.RxNorms...)
		o.logger.Debug("question segment loaded", "segment", id, "pico", t, "entities", len(bundle.Entities))
	}
	return result, warnings, nil
}
