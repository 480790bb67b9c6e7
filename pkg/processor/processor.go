package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethpandaops/reportoor/pkg/circleci"
	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/ethpandaops/reportoor/pkg/report"
	"github.com/ethpandaops/reportoor/pkg/sink"
	"github.com/sirupsen/logrus"
)

// Source provides workflow job and artifact data. *circleci.Client
// implements it; tests substitute their own.
type Source interface {
	ListWorkflowJobs(ctx context.Context, workflowID string) ([]circleci.Job, error)
	ListJobArtifacts(ctx context.Context, projectSlug string, jobNumber int64) ([]circleci.Artifact, error)
	FetchArtifactText(ctx context.Context, artifactURL string) (string, error)
}

// Compile-time interface check.
var _ Source = (*circleci.Client)(nil)

// Result summarizes one processed workflow.
type Result struct {
	WorkflowID    string
	JobsProcessed int
	TestsTotal    int
	TestsPassed   int
	TestsFailed   int
	FailureCount  int
}

// Processor turns a workflow's raw test artifacts into report outputs.
// Jobs, nodes and lines are processed in one sequential pass each.
type Processor struct {
	log    logrus.FieldLogger
	cfg    *config.ReportConfig
	source Source
	sink   sink.Sink
}

// New creates a Processor.
func New(
	log logrus.FieldLogger,
	cfg *config.ReportConfig,
	source Source,
	out sink.Sink,
) *Processor {
	return &Processor{
		log:    log.WithField("component", "processor"),
		cfg:    cfg,
		source: source,
		sink:   out,
	}
}

// ProcessWorkflow fetches the workflow's per-job test artifacts, merges
// them into job and workflow summaries, aggregates failures and writes
// the JSON and markdown outputs to the sink.
func (p *Processor) ProcessWorkflow(
	ctx context.Context, workflowID string,
) (*Result, error) {
	jobs, err := p.source.ListWorkflowJobs(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("fetching workflow %s: %w", workflowID, err)
	}

	result := &Result{WorkflowID: workflowID}
	workflow := report.NewWorkflowSummary()

	var failures []report.FailureEntry

	for _, job := range jobs {
		if !p.jobSelected(job.Name) {
			continue
		}

		summary, jobFailures, err := p.processJob(ctx, &job)
		if err != nil {
			return nil, fmt.Errorf("processing job %s: %w", job.Name, err)
		}

		workflow.AddJob(job.Name, summary)
		failures = append(failures, jobFailures...)

		result.JobsProcessed++
		result.TestsPassed += summary.CountByStatus(report.StatusPassed)
		result.TestsFailed += summary.CountByStatus(report.StatusFailed)
	}

	result.TestsTotal = workflow.Len()
	result.FailureCount = len(failures)

	if err := p.writeWorkflowOutputs(workflow, failures); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"workflow_id": workflowID,
		"jobs":        result.JobsProcessed,
		"tests":       result.TestsTotal,
		"failures":    result.FailureCount,
	}).Info("Workflow processed")

	return result, nil
}

// processJob downloads a job's report artifacts, builds its summary and
// collects its failure entries across nodes.
func (p *Processor) processJob(
	ctx context.Context, job *circleci.Job,
) (*report.JobSummary, []report.FailureEntry, error) {
	artifacts, err := p.source.ListJobArtifacts(
		ctx, job.ProjectSlug, job.JobNumber,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching artifacts: %w", err)
	}

	nodeSummaries := make(map[int]string)
	nodeFailures := make(map[int]string)

	for _, artifact := range artifacts {
		if !strings.HasPrefix(artifact.Path, p.cfg.ArtifactPrefix) {
			continue
		}

		switch {
		case strings.HasSuffix(artifact.Path, p.cfg.SummarySuffix):
			text, err := p.source.FetchArtifactText(ctx, artifact.URL)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"fetching %s: %w", artifact.Path, err,
				)
			}

			nodeSummaries[artifact.NodeIndex] = text
		case strings.HasSuffix(artifact.Path, p.cfg.FailuresSuffix):
			text, err := p.source.FetchArtifactText(ctx, artifact.URL)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"fetching %s: %w", artifact.Path, err,
				)
			}

			nodeFailures[artifact.NodeIndex] = text
		}
	}

	summary := report.NewJobSummary()

	// Ascending node order keeps last-write-wins deterministic.
	nodes := sortedNodes(nodeSummaries)

	for _, node := range nodes {
		summary.ParseSummaryText(nodeSummaries[node])
	}

	var failures []report.FailureEntry

	for _, node := range nodes {
		failures = append(failures, report.CollectNodeFailures(
			job.Name, nodeSummaries[node], nodeFailures[node],
		)...)
	}

	data, err := marshalIndented(summary)
	if err != nil {
		return nil, nil, err
	}

	if err := p.sink.WriteFile(
		job.Name+"/test_summary.json", data,
	); err != nil {
		return nil, nil, err
	}

	p.log.WithFields(logrus.Fields{
		"job":      job.Name,
		"nodes":    len(nodes),
		"tests":    summary.Len(),
		"failures": len(failures),
	}).Debug("Job processed")

	return summary, failures, nil
}

// writeWorkflowOutputs writes the cross-job summary, the failure summary
// and the markdown report.
func (p *Processor) writeWorkflowOutputs(
	workflow *report.WorkflowSummary,
	failures []report.FailureEntry,
) error {
	data, err := marshalIndented(workflow)
	if err != nil {
		return err
	}

	if err := p.sink.WriteFile("test_summary.json", data); err != nil {
		return err
	}

	byTest, byModel := report.AggregateFailures(failures)

	summary := report.NewFailureSummary(failures, byTest, byModel)

	data, err = marshalIndented(summary)
	if err != nil {
		return err
	}

	if err := p.sink.WriteFile("failure_summary.json", data); err != nil {
		return err
	}

	md := report.RenderFailureReport(byTest, byModel)

	return p.sink.WriteFile("failure_summary.md", []byte(md))
}

// jobSelected reports whether a job's artifacts carry test reports.
func (p *Processor) jobSelected(name string) bool {
	for _, prefix := range p.cfg.JobPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

// sortedNodes returns the node indexes of m in ascending order.
func sortedNodes(m map[int]string) []int {
	nodes := make([]int, 0, len(m))
	for node := range m {
		nodes = append(nodes, node)
	}

	sort.Ints(nodes)

	return nodes
}

// marshalIndented serializes v with four-space indentation.
func marshalIndented(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("serializing output: %w", err)
	}

	return data, nil
}
