package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/apperrors"
	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
	"alfredoptarigan/cv-screening/internal/tasks"
)

// ErrNoUsableDocument is the failure recorded when an applicant has no
// processed document with text.
var ErrNoUsableDocument = errors.New("no usable document")

type ScreeningService struct {
	store      repositories.Store
	dispatcher tasks.Dispatcher
	prompts    *PromptBuilder
	analyzer   Analyzer
	log        *zap.Logger
	now        func() time.Time
}

func NewScreeningService(
	store repositories.Store,
	dispatcher tasks.Dispatcher,
	prompts *PromptBuilder,
	analyzer Analyzer,
	log *zap.Logger,
) *ScreeningService {
	return &ScreeningService{
		store:      store,
		dispatcher: dispatcher,
		prompts:    prompts,
		analyzer:   analyzer,
		log:        logger.WithFields(log, zap.String("component", "screening")),
		now:        time.Now,
	}
}

// RequestScreening authorizes the caller, creates one processing result per
// distinct applicant in a single transaction and schedules the screenings.
func (s *ScreeningService) RequestScreening(ctx context.Context, caller models.Caller, jobID uint, applicantIDs []uint) ([]models.ScreeningResult, error) {
	if caller.UserID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	ids := uniqueIDs(applicantIDs)
	if len(ids) == 0 {
		return nil, apperrors.ValidationField("applicant_ids", "at least one applicant is required")
	}

	store := s.store.Session(ctx)

	job, err := store.Registry().FindJob(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("job %d not found", jobID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load job")
	}

	if !caller.CanManage(job) {
		return nil, apperrors.Forbidden("you are not allowed to screen applicants for this job")
	}

	applicants, err := store.Registry().FindApplicantsForJob(jobID, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load applicants")
	}

	belongs := make(map[uint]struct{}, len(applicants))
	for _, a := range applicants {
		belongs[a.ID] = struct{}{}
	}
	var foreign []string
	for _, id := range ids {
		if _, ok := belongs[id]; !ok {
			foreign = append(foreign, strconv.FormatUint(uint64(id), 10))
		}
	}
	if len(foreign) > 0 {
		return nil, apperrors.ValidationField("applicant_ids",
			fmt.Sprintf("applicants %s do not belong to job %d", strings.Join(foreign, ", "), jobID))
	}

	now := s.now()
	rows := make([]*models.ScreeningResult, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, &models.ScreeningResult{
			ApplicantID: id,
			JobID:       jobID,
			Status:      models.ScreeningStatusProcessing,
			Strengths:   []string{},
			Weaknesses:  []string{},
			CreatedAt:   now,
		})
	}

	err = store.Transaction(func(tx repositories.Store) error {
		return tx.Screenings().CreateBatch(rows)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to create screening results")
	}

	results := make([]models.ScreeningResult, 0, len(rows))
	for _, row := range rows {
		// the stale-task poller retries rows whose dispatch failed
		if err := s.dispatcher.Dispatch(ctx, tasks.ScreenApplicant(row.ID)); err != nil {
			s.log.Warn("failed to dispatch screening", zap.Uint(logger.FieldResultID, row.ID), zap.Error(err))
		}
		results = append(results, *row)
	}

	s.log.Info("screening requested",
		zap.Uint("job_id", jobID),
		zap.String("caller", caller.UserID),
		zap.Int("applicants", len(results)),
	)

	return results, nil
}

// ScreenApplicant runs the background screening for one result row. Every
// outcome after the row is loaded ends in completed or failed.
func (s *ScreeningService) ScreenApplicant(ctx context.Context, resultID uint) (err error) {
	log := s.log.With(zap.Uint(logger.FieldResultID, resultID))
	store := s.store.Session(ctx)

	result, err := store.Screenings().FindByID(resultID)
	if err != nil {
		return fmt.Errorf("failed to load screening result: %w", err)
	}

	if result.Status.IsTerminal() {
		log.Info("screening already finished, skipping", zap.String("status", string(result.Status)))
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = s.fail(store, resultID, fmt.Errorf("screening panicked: %v", rec), log)
		}
	}()

	doc, err := store.Documents().FindLatestUsable(result.ApplicantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return s.fail(store, resultID, ErrNoUsableDocument, log)
		}
		return s.fail(store, resultID, err, log)
	}

	job, err := store.Registry().FindJob(result.JobID)
	if err != nil {
		return s.fail(store, resultID, err, log)
	}

	prompt, jc := s.prompts.BuildScreeningPrompt(job, doc.Text())
	log.Debug("prompt built",
		zap.Uint(logger.FieldDocumentID, doc.ID),
		zap.String("job_type", string(jc.JobType)),
		zap.String("experience_level", string(jc.ExperienceLevel)),
		zap.Int("prompt_chars", len(prompt)),
	)

	analysis := ParseAnalysis(s.analyzer.Analyze(ctx, prompt))

	err = store.Transaction(func(tx repositories.Store) error {
		if err := tx.Screenings().Complete(resultID, analysis, s.now()); err != nil {
			return err
		}
		return tx.Registry().UpdateApplicantStatus(result.ApplicantID, models.ApplicantStatusScreened)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			log.Info("screening finished by another run, discarding result")
			return nil
		}
		return s.fail(store, resultID, err, log)
	}

	log.Info("screening completed", zap.Int("overall_score", analysis.OverallScore))
	return nil
}

func (s *ScreeningService) fail(store repositories.Store, resultID uint, cause error, log *zap.Logger) error {
	log.Error("screening failed", zap.Error(cause))

	if err := store.Screenings().Fail(resultID, cause.Error()); err != nil && !errors.Is(err, repositories.ErrInvalidTransition) {
		log.Error("failed to mark screening failed", zap.Error(err))
	}

	return fmt.Errorf("screening %d failed: %w", resultID, cause)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
