package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
)

// PartyChecker is the one authorization predicate for job-scoped resources:
// a user is a party to a job iff they own it or hold an active application
// on it. Every write path goes through here, nothing re-implements the check.
type PartyChecker struct {
	Jobs *repos.JobRepo
	Apps *repos.ApplicationRepo
}

// JobByID loads the job, translating the missing row into the NotFound kind.
func (p *PartyChecker) JobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := p.Jobs.ByID(ctx, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("job not found")
	}
	if err != nil {
		return nil, errs.Transient("fetch job", err)
	}
	return job, nil
}

func (p *PartyChecker) IsPartyToJob(ctx context.Context, userID string, job *domain.Job) (bool, error) {
	if job.CustomerID == userID {
		return true, nil
	}
	ok, err := p.Apps.HasActive(ctx, job.ID, userID)
	if err != nil {
		return false, errs.Transient("check application", err)
	}
	return ok, nil
}

// RequireParty returns Unauthorized unless the user is a party to the job.
func (p *PartyChecker) RequireParty(ctx context.Context, userID string, job *domain.Job) error {
	ok, err := p.IsPartyToJob(ctx, userID, job)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Unauthorized("not a party to this job")
	}
	return nil
}
