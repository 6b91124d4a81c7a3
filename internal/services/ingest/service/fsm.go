package service

import "launchpipe/internal/services/ingest/domain"

// Outcome is what a stage handler reports back to the machine
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeInitial     Outcome = "initial"
	OutcomeEarly       Outcome = "early"
	OutcomeIncremental Outcome = "incremental"
	OutcomeManual      Outcome = "manual"
	OutcomeEmpty       Outcome = "empty"
	OutcomeError       Outcome = "error"
)

type edge struct {
	from domain.Stage
	on   Outcome
}

var transitions = map[edge]domain.Stage{
	{domain.StageStart, OutcomeInitial}:     domain.StageInitialLoad,
	{domain.StageStart, OutcomeEarly}:       domain.StageEarlyExit,
	{domain.StageStart, OutcomeIncremental}: domain.StageIncrementalLoad,
	{domain.StageStart, OutcomeManual}:      domain.StageAggregate,

	{domain.StageInitialLoad, OutcomeOK}:     domain.StageValidate,
	{domain.StageIncrementalLoad, OutcomeOK}: domain.StageValidate,

	{domain.StageValidate, OutcomeOK}:    domain.StageMerge,
	{domain.StageValidate, OutcomeEmpty}: domain.StageEarlyExit,

	{domain.StageMerge, OutcomeOK}:        domain.StageUpdateCursor,
	{domain.StageUpdateCursor, OutcomeOK}: domain.StageAggregate,
	{domain.StageAggregate, OutcomeOK}:    domain.StageDone,
	{domain.StageEarlyExit, OutcomeOK}:    domain.StageDone,
}

// Next is the pure transition function of the run machine
// terminal stages stay put; any error or unknown pair lands in Failed
func Next(from domain.Stage, on Outcome) domain.Stage {
	if from.Terminal() {
		return from
	}
	if on == OutcomeError {
		return domain.StageFailed
	}
	if to, ok := transitions[edge{from, on}]; ok {
		return to
	}
	return domain.StageFailed
}
