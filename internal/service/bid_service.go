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
	"solosphere/internal/metrics"
	"solosphere/internal/repository"
)

var (
	ErrDuplicateBid  = errors.New("you already bid this job")
	ErrInvalidBid    = errors.New("invalid bid")
	ErrInvalidStatus = errors.New("invalid bid status")
)

// BidInput son los campos de una oferta que llegan por la API.
type BidInput struct {
	JobID    string
	JobTitle string
	Category string
	Email    string
	Buyer    string
	Price    float64
	Comment  string
	Deadline *time.Time
	Status   string
}

// BidService coordina las reglas de negocio de las ofertas.
type BidService struct {
	logger  *zap.Logger
	bids    repository.BidRepository
	jobs    repository.JobRepository
	metrics metrics.Recorder
}

func NewBidService(logger *zap.Logger, bids repository.BidRepository, jobs repository.JobRepository, recorder metrics.Recorder) *BidService {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &BidService{
		logger:  logger,
		bids:    bids,
		jobs:    jobs,
		metrics: recorder,
	}
}

// Create inserta la oferta si no existe otra del mismo email para el mismo job,
// e incrementa bid_count del job padre una sola vez.
func (s *BidService) Create(ctx context.Context, identity string, input BidInput) (domain.InsertResult, error) {
	jobID, ok := canonicalID(input.JobID)
	if !ok {
		return domain.InsertResult{}, ErrInvalidID
	}
	input.JobID = jobID
	input.Email = strings.TrimSpace(input.Email)
	if input.Price < 0 {
		return domain.InsertResult{}, ErrInvalidBid
	}
	if input.Email == "" {
		input.Email = identity
	}
	if err := Authorize(identity, input.Email); err != nil {
		return domain.InsertResult{}, err
	}

	// Toda oferta nace Pending; sólo el comprador la mueve después.
	if strings.TrimSpace(input.Status) != "" {
		if parsed, ok := domain.ParseBidStatus(input.Status); !ok || parsed != domain.BidStatusPending {
			return domain.InsertResult{}, ErrInvalidStatus
		}
	}

	exists, err := s.bids.Exists(ctx, input.Email, input.JobID)
	if err != nil {
		return domain.InsertResult{}, err
	}
	if exists {
		s.metrics.RecordDuplicateBid()
		return domain.InsertResult{}, ErrDuplicateBid
	}

	bid := domain.Bid{
		ID:        uuid.NewString(),
		JobID:     input.JobID,
		JobTitle:  strings.TrimSpace(input.JobTitle),
		Category:  strings.TrimSpace(input.Category),
		Email:     input.Email,
		Buyer:     strings.TrimSpace(input.Buyer),
		Price:     input.Price,
		Comment:   input.Comment,
		Deadline:  input.Deadline,
		Status:    domain.BidStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	// El job es la fuente de verdad del comprador cuando existe.
	job, err := s.jobs.GetByID(ctx, input.JobID)
	switch {
	case err == nil:
		bid.Buyer = job.BuyerInfo.Email
		bid.JobTitle = job.Title
		bid.Category = job.Category
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return domain.InsertResult{}, err
	}

	if err := s.bids.InsertWithBidCount(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrDuplicateBid) {
			s.metrics.RecordDuplicateBid()
			return domain.InsertResult{}, ErrDuplicateBid
		}
		return domain.InsertResult{}, err
	}

	s.metrics.RecordBidCreated()
	s.logger.Info("bid created",
		zap.String("bid_id", bid.ID),
		zap.String("job_id", bid.JobID),
		zap.String("bidder", bid.Email),
	)
	return domain.InsertResult{Acknowledged: true, InsertedID: bid.ID}, nil
}

// ListForIdentity devuelve las ofertas hechas por email, o las recibidas si asBuyer.
func (s *BidService) ListForIdentity(ctx context.Context, identity, email string, asBuyer bool) ([]domain.Bid, error) {
	if err := Authorize(identity, email); err != nil {
		return nil, err
	}
	if asBuyer {
		return s.bids.ListByBuyer(ctx, email)
	}
	return s.bids.ListByBidder(ctx, email)
}

// UpdateStatus cambia el estado de una oferta. El comprador decide In Progress,
// Accepted o Rejected; el ofertante sólo puede cerrar como Complete una oferta
// que está In Progress.
func (s *BidService) UpdateStatus(ctx context.Context, identity, id, rawStatus string) (domain.WriteResult, error) {
	id, ok := canonicalID(id)
	if !ok {
		return domain.WriteResult{}, ErrInvalidID
	}
	status, ok := domain.ParseBidStatus(rawStatus)
	if !ok {
		return domain.WriteResult{}, ErrInvalidStatus
	}

	bid, err := s.bids.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WriteResult{Acknowledged: true}, nil
	}
	if err != nil {
		return domain.WriteResult{}, err
	}
	if err := authorizeTransition(identity, bid, status); err != nil {
		return domain.WriteResult{}, err
	}

	n, err := s.bids.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.WriteResult{}, err
	}
	res := domain.WriteResult{Acknowledged: true, MatchedCount: n}
	if bid.Status != status {
		res.ModifiedCount = n
	}
	s.logger.Info("bid status updated",
		zap.String("bid_id", id),
		zap.String("status", string(status)),
		zap.String("by", identity),
	)
	return res, nil
}

var buyerStatuses = map[domain.BidStatus]bool{
	domain.BidStatusInProgress: true,
	domain.BidStatusAccepted:   true,
	domain.BidStatusRejected:   true,
}

// authorizeTransition decide si identity puede llevar la oferta a status.
// Repetir el estado actual es un no-op permitido a ambas partes.
func authorizeTransition(identity string, bid domain.Bid, status domain.BidStatus) error {
	if status == bid.Status {
		return AuthorizeAny(identity, bid.Buyer, bid.Email)
	}
	if buyerStatuses[status] && Authorize(identity, bid.Buyer) == nil {
		return nil
	}
	if status == domain.BidStatusComplete && Authorize(identity, bid.Email) == nil {
		if bid.Status != domain.BidStatusInProgress {
			return ErrInvalidStatus
		}
		return nil
	}
	return ErrForbidden
}
