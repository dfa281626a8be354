package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"solosphere/internal/domain"
	"solosphere/internal/repository"
)

var (
	ErrInvalidID  = errors.New("invalid id")
	ErrInvalidJob = errors.New("invalid job")
)

// JobInput son los campos de un Job que llegan por la API.
type JobInput struct {
	Title       string
	Category    string
	Description string
	Deadline    *time.Time
	MinPrice    float64
	MaxPrice    float64
	BuyerInfo   domain.BuyerInfo
}

// JobService coordina las reglas de negocio de las publicaciones.
type JobService struct {
	logger *zap.Logger
	jobs   repository.JobRepository
}

func NewJobService(logger *zap.Logger, jobs repository.JobRepository) *JobService {
	return &JobService{logger: logger, jobs: jobs}
}

// List devuelve todos los jobs que cumplen filtro, búsqueda y orden. Sin paginación.
func (s *JobService) List(ctx context.Context, params repository.JobListingParams) ([]domain.Job, error) {
	return s.jobs.List(ctx, repository.BuildJobListingQuery(params))
}

// ListByBuyer devuelve los jobs publicados por email; sólo el propio dueño puede verlos.
func (s *JobService) ListByBuyer(ctx context.Context, identity, email string) ([]domain.Job, error) {
	if err := Authorize(identity, email); err != nil {
		return nil, err
	}
	return s.jobs.ListByBuyer(ctx, email)
}

// Get devuelve el job o nil si no existe.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, ErrInvalidID
	}
	job, err := s.jobs.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) Create(ctx context.Context, identity string, input JobInput) (domain.InsertResult, error) {
	input, err := s.prepare(identity, input)
	if err != nil {
		return domain.InsertResult{}, err
	}

	job := newJob(uuid.NewString(), input)
	if err := s.jobs.Insert(ctx, job); err != nil {
		return domain.InsertResult{}, err
	}
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("buyer", identity))
	return domain.InsertResult{Acknowledged: true, InsertedID: job.ID}, nil
}

// Update reemplaza los campos del job, o lo crea con ese id si no existe.
func (s *JobService) Update(ctx context.Context, identity, id string, input JobInput) (domain.WriteResult, error) {
	id, ok := canonicalID(id)
	if !ok {
		return domain.WriteResult{}, ErrInvalidID
	}
	input, err := s.prepare(identity, input)
	if err != nil {
		return domain.WriteResult{}, err
	}

	res, err := s.jobs.Upsert(ctx, newJob(id, input))
	if errors.Is(err, repository.ErrOwnerMismatch) {
		return domain.WriteResult{}, ErrForbidden
	}
	if err != nil {
		return domain.WriteResult{}, err
	}
	return res, nil
}

// Delete borra el job si la identidad es su dueña. Un id inexistente no es error.
func (s *JobService) Delete(ctx context.Context, identity, id string) (domain.DeleteResult, error) {
	id, ok := canonicalID(id)
	if !ok {
		return domain.DeleteResult{}, ErrInvalidID
	}
	job, err := s.jobs.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeleteResult{Acknowledged: true}, nil
	}
	if err != nil {
		return domain.DeleteResult{}, err
	}
	if err := Authorize(identity, job.BuyerInfo.Email); err != nil {
		return domain.DeleteResult{}, err
	}

	n, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	s.logger.Info("job deleted", zap.String("job_id", id), zap.String("buyer", identity))
	return domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// prepare valida el input y asegura que el dueño declarado sea la identidad autenticada.
func (s *JobService) prepare(identity string, input JobInput) (JobInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.BuyerInfo.Email = strings.TrimSpace(input.BuyerInfo.Email)

	if input.Title == "" || input.MinPrice < 0 || input.MaxPrice < 0 {
		return JobInput{}, ErrInvalidJob
	}
	if input.MaxPrice > 0 && input.MinPrice > input.MaxPrice {
		return JobInput{}, ErrInvalidJob
	}
	if input.BuyerInfo.Email == "" {
		input.BuyerInfo.Email = identity
	}
	if err := Authorize(identity, input.BuyerInfo.Email); err != nil {
		return JobInput{}, err
	}
	return input, nil
}

func newJob(id string, input JobInput) domain.Job {
	return domain.Job{
		ID:          id,
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		Deadline:    input.Deadline,
		MinPrice:    input.MinPrice,
		MaxPrice:    input.MaxPrice,
		BuyerInfo:   input.BuyerInfo,
		CreatedAt:   time.Now().UTC(),
	}
}

// canonicalID acepta cualquier forma que uuid.Parse entienda y devuelve la
// canónica en minúsculas, que es la que se guarda y se compara.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}
