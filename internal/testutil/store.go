// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"alfredoptarigan/cv-screening/internal/models"
	"alfredoptarigan/cv-screening/internal/repositories"
)

type memData struct {
	nextDocumentID  uint
	nextScreeningID uint
	documents       map[uint]models.Document
	screenings      map[uint]models.ScreeningResult
	jobs            map[uint]models.Job
	applicants      map[uint]models.Applicant
}

func (d *memData) clone() *memData {
	c := &memData{
		nextDocumentID:  d.nextDocumentID,
		nextScreeningID: d.nextScreeningID,
		documents:       make(map[uint]models.Document, len(d.documents)),
		screenings:      make(map[uint]models.ScreeningResult, len(d.screenings)),
		jobs:            make(map[uint]models.Job, len(d.jobs)),
		applicants:      make(map[uint]models.Applicant, len(d.applicants)),
	}
	for k, v := range d.documents {
		c.documents[k] = copyDocument(v)
	}
	for k, v := range d.screenings {
		c.screenings[k] = copyScreening(v)
	}
	for k, v := range d.jobs {
		c.jobs[k] = v
	}
	for k, v := range d.applicants {
		c.applicants[k] = v
	}
	return c
}

type memShared struct {
	mu       sync.Mutex
	data     *memData
	sessions atomic.Int64

	documentCreateErr  error
	screeningCreateErr error
	applicantUpdateErr error
}

// MemoryStore is an in-memory repositories.Store with the same conditional
// write semantics as the gorm implementation.
type MemoryStore struct {
	shared *memShared
	tx     *memData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shared: &memShared{data: &memData{
		documents:  map[uint]models.Document{},
		screenings: map[uint]models.ScreeningResult{},
		jobs:       map[uint]models.Job{},
		applicants: map[uint]models.Applicant{},
	}}}
}

var _ repositories.Store = (*MemoryStore)(nil)

func (s *MemoryStore) with(fn func(d *memData) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	return fn(s.shared.data)
}

func (s *MemoryStore) Session(ctx context.Context) repositories.Store {
	s.shared.sessions.Add(1)
	return s
}

// Sessions reports how many times Session was called.
func (s *MemoryStore) Sessions() int {
	return int(s.shared.sessions.Load())
}

func (s *MemoryStore) Transaction(fn func(tx repositories.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	working := s.shared.data.clone()
	if err := fn(&MemoryStore{shared: s.shared, tx: working}); err != nil {
		return err
	}
	s.shared.data = working
	return nil
}

func (s *MemoryStore) Documents() repositories.DocumentRepository {
	return &memDocuments{store: s}
}

func (s *MemoryStore) Screenings() repositories.ScreeningRepository {
	return &memScreenings{store: s}
}

func (s *MemoryStore) Registry() repositories.RegistryRepository {
	return &memRegistry{store: s}
}

func (s *MemoryStore) FailDocumentCreate(err error) {
	s.with(func(*memData) error { s.shared.documentCreateErr = err; return nil })
}

func (s *MemoryStore) FailScreeningCreate(err error) {
	s.with(func(*memData) error { s.shared.screeningCreateErr = err; return nil })
}

func (s *MemoryStore) FailApplicantUpdate(err error) {
	s.with(func(*memData) error { s.shared.applicantUpdateErr = err; return nil })
}

func (s *MemoryStore) AddJob(job models.Job) models.Job {
	s.with(func(d *memData) error {
		d.jobs[job.ID] = job
		return nil
	})
	return job
}

func (s *MemoryStore) AddApplicant(applicant models.Applicant) models.Applicant {
	if applicant.Status == "" {
		applicant.Status = "applied"
	}
	s.with(func(d *memData) error {
		d.applicants[applicant.ID] = applicant
		return nil
	})
	return applicant
}

// PutDocument stores doc as-is, assigning an id when it has none.
func (s *MemoryStore) PutDocument(doc models.Document) models.Document {
	s.with(func(d *memData) error {
		if doc.ID == 0 {
			d.nextDocumentID++
			doc.ID = d.nextDocumentID
		} else if doc.ID > d.nextDocumentID {
			d.nextDocumentID = doc.ID
		}
		d.documents[doc.ID] = copyDocument(doc)
		return nil
	})
	return doc
}

// PutScreening stores result as-is, assigning an id when it has none.
func (s *MemoryStore) PutScreening(result models.ScreeningResult) models.ScreeningResult {
	s.with(func(d *memData) error {
		if result.ID == 0 {
			d.nextScreeningID++
			result.ID = d.nextScreeningID
		} else if result.ID > d.nextScreeningID {
			d.nextScreeningID = result.ID
		}
		d.screenings[result.ID] = copyScreening(result)
		return nil
	})
	return result
}

func (s *MemoryStore) Document(id uint) (models.Document, bool) {
	var doc models.Document
	var ok bool
	s.with(func(d *memData) error {
		doc, ok = d.documents[id]
		doc = copyDocument(doc)
		return nil
	})
	return doc, ok
}

func (s *MemoryStore) AllDocuments() []models.Document {
	var docs []models.Document
	s.with(func(d *memData) error {
		for _, doc := range d.documents {
			docs = append(docs, copyDocument(doc))
		}
		return nil
	})
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (s *MemoryStore) Screening(id uint) (models.ScreeningResult, bool) {
	var result models.ScreeningResult
	var ok bool
	s.with(func(d *memData) error {
		result, ok = d.screenings[id]
		result = copyScreening(result)
		return nil
	})
	return result, ok
}

func (s *MemoryStore) AllScreenings() []models.ScreeningResult {
	var results []models.ScreeningResult
	s.with(func(d *memData) error {
		for _, r := range d.screenings {
			results = append(results, copyScreening(r))
		}
		return nil
	})
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

func (s *MemoryStore) Applicant(id uint) (models.Applicant, bool) {
	var applicant models.Applicant
	var ok bool
	s.with(func(d *memData) error {
		applicant, ok = d.applicants[id]
		return nil
	})
	return applicant, ok
}

func copyDocument(doc models.Document) models.Document {
	if doc.ExtractedText != nil {
		text := *doc.ExtractedText
		doc.ExtractedText = &text
	}
	return doc
}

func copyScreening(r models.ScreeningResult) models.ScreeningResult {
	if r.Strengths != nil {
		r.Strengths = append(r.Strengths[:0:0], r.Strengths...)
	}
	if r.Weaknesses != nil {
		r.Weaknesses = append(r.Weaknesses[:0:0], r.Weaknesses...)
	}
	if r.ErrorMessage != nil {
		msg := *r.ErrorMessage
		r.ErrorMessage = &msg
	}
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		r.CompletedAt = &at
	}
	return r
}

type memDocuments struct {
	store *MemoryStore
}

func (m *memDocuments) Create(document *models.Document) error {
	return m.store.with(func(d *memData) error {
		if err := m.store.shared.documentCreateErr; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		d.nextDocumentID++
		document.ID = d.nextDocumentID
		now := time.Now()
		if document.UploadedAt.IsZero() {
			document.UploadedAt = now
		}
		document.UpdatedAt = now
		d.documents[document.ID] = copyDocument(*document)
		return nil
	})
}

func (m *memDocuments) FindByID(id uint) (*models.Document, error) {
	var out *models.Document
	err := m.store.with(func(d *memData) error {
		doc, ok := d.documents[id]
		if !ok {
			return fmt.Errorf("document %d: %w", id, repositories.ErrNotFound)
		}
		c := copyDocument(doc)
		out = &c
		return nil
	})
	return out, err
}

func (m *memDocuments) latest(applicantID uint, keep func(models.Document) bool) (*models.Document, bool) {
	var best *models.Document
	m.store.with(func(d *memData) error {
		for _, doc := range d.documents {
			if doc.ApplicantID != applicantID || !keep(doc) {
				continue
			}
			if best == nil ||
				doc.UploadedAt.After(best.UploadedAt) ||
				(doc.UploadedAt.Equal(best.UploadedAt) && doc.ID > best.ID) {
				c := copyDocument(doc)
				best = &c
			}
		}
		return nil
	})
	return best, best != nil
}

func (m *memDocuments) FindLatestByApplicant(applicantID uint) (*models.Document, error) {
	doc, ok := m.latest(applicantID, func(models.Document) bool { return true })
	if !ok {
		return nil, fmt.Errorf("document for applicant %d: %w", applicantID, repositories.ErrNotFound)
	}
	return doc, nil
}

func (m *memDocuments) FindLatestUsable(applicantID uint) (*models.Document, error) {
	doc, ok := m.latest(applicantID, func(doc models.Document) bool {
		return doc.Status == models.DocumentStatusProcessed && doc.Text() != ""
	})
	if !ok {
		return nil, fmt.Errorf("usable document for applicant %d: %w", applicantID, repositories.ErrNotFound)
	}
	return doc, nil
}

func (m *memDocuments) FindByStatus(status models.DocumentStatus, limit int) ([]models.Document, error) {
	var docs []models.Document
	m.store.with(func(d *memData) error {
		for _, doc := range d.documents {
			if doc.Status == status {
				docs = append(docs, copyDocument(doc))
			}
		}
		return nil
	})
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return limitSlice(docs, limit), nil
}

func (m *memDocuments) FindStale(updatedBefore time.Time, limit int) ([]models.Document, error) {
	var docs []models.Document
	m.store.with(func(d *memData) error {
		for _, doc := range d.documents {
			if doc.Status.IsTerminal() || !doc.UpdatedAt.Before(updatedBefore) {
				continue
			}
			docs = append(docs, copyDocument(doc))
		}
		return nil
	})
	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt.Before(docs[j].UpdatedAt) })
	return limitSlice(docs, limit), nil
}

func (m *memDocuments) MarkProcessing(id uint, force bool) error {
	return m.store.with(func(d *memData) error {
		doc, ok := d.documents[id]
		if !ok {
			return fmt.Errorf("document %d: %w", id, repositories.ErrNotFound)
		}
		if !force && !doc.Status.CanTransitionTo(models.DocumentStatusProcessing) {
			return fmt.Errorf("document %d is already finished: %w", id, repositories.ErrInvalidTransition)
		}
		doc.Status = models.DocumentStatusProcessing
		doc.ExtractedText = nil
		doc.UpdatedAt = time.Now()
		d.documents[id] = doc
		return nil
	})
}

func (m *memDocuments) MarkProcessed(id uint, text string) error {
	return m.finish(id, models.DocumentStatusProcessed, func(doc *models.Document) {
		doc.Status = models.DocumentStatusProcessed
		doc.ExtractedText = &text
	})
}

func (m *memDocuments) MarkError(id uint) error {
	return m.finish(id, models.DocumentStatusError, func(doc *models.Document) {
		doc.Status = models.DocumentStatusError
		doc.ExtractedText = nil
	})
}

func (m *memDocuments) finish(id uint, next models.DocumentStatus, apply func(doc *models.Document)) error {
	return m.store.with(func(d *memData) error {
		doc, ok := d.documents[id]
		if !ok || !doc.Status.CanTransitionTo(next) {
			return fmt.Errorf("document %d is not processing: %w", id, repositories.ErrInvalidTransition)
		}
		apply(&doc)
		doc.UpdatedAt = time.Now()
		d.documents[id] = copyDocument(doc)
		return nil
	})
}

type memScreenings struct {
	store *MemoryStore
}

func (m *memScreenings) CreateBatch(results []*models.ScreeningResult) error {
	return m.store.with(func(d *memData) error {
		if err := m.store.shared.screeningCreateErr; err != nil {
			return fmt.Errorf("failed to create screening results: %w", err)
		}
		now := time.Now()
		for _, r := range results {
			d.nextScreeningID++
			r.ID = d.nextScreeningID
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			r.UpdatedAt = now
			d.screenings[r.ID] = copyScreening(*r)
		}
		return nil
	})
}

func (m *memScreenings) FindByID(id uint) (*models.ScreeningResult, error) {
	var out *models.ScreeningResult
	err := m.store.with(func(d *memData) error {
		r, ok := d.screenings[id]
		if !ok {
			return fmt.Errorf("screening result %d: %w", id, repositories.ErrNotFound)
		}
		c := copyScreening(r)
		out = &c
		return nil
	})
	return out, err
}

func (m *memScreenings) FindLatestByApplicant(applicantID uint) (*models.ScreeningResult, error) {
	var best *models.ScreeningResult
	m.store.with(func(d *memData) error {
		for _, r := range d.screenings {
			if r.ApplicantID != applicantID {
				continue
			}
			if best == nil ||
				r.CreatedAt.After(best.CreatedAt) ||
				(r.CreatedAt.Equal(best.CreatedAt) && r.ID > best.ID) {
				c := copyScreening(r)
				best = &c
			}
		}
		return nil
	})
	if best == nil {
		return nil, fmt.Errorf("screening result for applicant %d: %w", applicantID, repositories.ErrNotFound)
	}
	return best, nil
}

func (m *memScreenings) FindStale(updatedBefore time.Time, limit int) ([]models.ScreeningResult, error) {
	var results []models.ScreeningResult
	m.store.with(func(d *memData) error {
		for _, r := range d.screenings {
			if r.Status == models.ScreeningStatusProcessing && r.UpdatedAt.Before(updatedBefore) {
				results = append(results, copyScreening(r))
			}
		}
		return nil
	})
	sort.Slice(results, func(i, j int) bool { return results[i].UpdatedAt.Before(results[j].UpdatedAt) })
	return limitSlice(results, limit), nil
}

func (m *memScreenings) Complete(id uint, analysis models.Analysis, completedAt time.Time) error {
	return m.finish(id, func(r *models.ScreeningResult) {
		r.Status = models.ScreeningStatusCompleted
		r.OverallScore = analysis.OverallScore
		r.Summary = analysis.Summary
		r.Strengths = append([]string{}, analysis.Strengths...)
		r.Weaknesses = append([]string{}, analysis.Weaknesses...)
		r.DetailedAnalysis = analysis.DetailedAnalysis
		r.CompletedAt = &completedAt
		r.ErrorMessage = nil
	})
}

func (m *memScreenings) Fail(id uint, message string) error {
	return m.finish(id, func(r *models.ScreeningResult) {
		r.Status = models.ScreeningStatusFailed
		r.ErrorMessage = &message
		r.CompletedAt = nil
	})
}

func (m *memScreenings) finish(id uint, apply func(r *models.ScreeningResult)) error {
	return m.store.with(func(d *memData) error {
		r, ok := d.screenings[id]
		if !ok || r.Status != models.ScreeningStatusProcessing {
			return fmt.Errorf("screening result %d is not processing: %w", id, repositories.ErrInvalidTransition)
		}
		apply(&r)
		r.UpdatedAt = time.Now()
		d.screenings[id] = copyScreening(r)
		return nil
	})
}

type memRegistry struct {
	store *MemoryStore
}

func (m *memRegistry) FindJob(id uint) (*models.Job, error) {
	var out *models.Job
	err := m.store.with(func(d *memData) error {
		job, ok := d.jobs[id]
		if !ok {
			return fmt.Errorf("job %d: %w", id, repositories.ErrNotFound)
		}
		out = &job
		return nil
	})
	return out, err
}

func (m *memRegistry) FindApplicant(id uint) (*models.Applicant, error) {
	var out *models.Applicant
	err := m.store.with(func(d *memData) error {
		a, ok := d.applicants[id]
		if !ok {
			return fmt.Errorf("applicant %d: %w", id, repositories.ErrNotFound)
		}
		out = &a
		return nil
	})
	return out, err
}

func (m *memRegistry) FindApplicantsForJob(jobID uint, ids []uint) ([]models.Applicant, error) {
	var out []models.Applicant
	m.store.with(func(d *memData) error {
		for _, id := range ids {
			if a, ok := d.applicants[id]; ok && a.JobID == jobID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRegistry) UpdateApplicantStatus(id uint, status string) error {
	return m.store.with(func(d *memData) error {
		if err := m.store.shared.applicantUpdateErr; err != nil {
			return fmt.Errorf("failed to update applicant status: %w", err)
		}
		a, ok := d.applicants[id]
		if !ok {
			return fmt.Errorf("applicant %d: %w", id, repositories.ErrNotFound)
		}
		a.Status = status
		d.applicants[id] = a
		return nil
	})
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
