package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"solosphere/internal/domain"
	"solosphere/internal/repository"
)

type mockJobRepo struct {
	jobs    map[string]domain.Job
	order   []string
	lastQ   repository.JobListingQuery
	listErr error
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]domain.Job)}
}

func (m *mockJobRepo) List(_ context.Context, q repository.JobListingQuery) ([]domain.Job, error) {
	m.lastQ = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Job{}
	for _, id := range m.order {
		if job, ok := m.jobs[id]; ok {
			out = append(out, job)
		}
	}
	return out, nil
}

func (m *mockJobRepo) ListByBuyer(_ context.Context, email string) ([]domain.Job, error) {
	out := []domain.Job{}
	for _, id := range m.order {
		if job, ok := m.jobs[id]; ok && job.BuyerInfo.Email == email {
			out = append(out, job)
		}
	}
	return out, nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (domain.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, pgx.ErrNoRows
	}
	return job, nil
}

func (m *mockJobRepo) Insert(_ context.Context, job domain.Job) error {
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	return nil
}

func (m *mockJobRepo) Upsert(ctx context.Context, job domain.Job) (domain.WriteResult, error) {
	existing, ok := m.jobs[job.ID]
	if !ok {
		_ = m.Insert(ctx, job)
		id := job.ID
		return domain.WriteResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	}
	if existing.BuyerInfo.Email != job.BuyerInfo.Email {
		return domain.WriteResult{}, repository.ErrOwnerMismatch
	}
	job.BidCount = existing.BidCount
	job.CreatedAt = existing.CreatedAt
	m.jobs[job.ID] = job
	res := domain.WriteResult{Acknowledged: true, MatchedCount: 1}
	if !sameJobFields(existing, job) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func sameJobFields(a, b domain.Job) bool {
	sameDeadline := (a.Deadline == nil && b.Deadline == nil) ||
		(a.Deadline != nil && b.Deadline != nil && a.Deadline.Equal(*b.Deadline))
	return sameDeadline &&
		a.Title == b.Title &&
		a.Category == b.Category &&
		a.Description == b.Description &&
		a.MinPrice == b.MinPrice &&
		a.MaxPrice == b.MaxPrice &&
		a.BuyerInfo == b.BuyerInfo
}

func (m *mockJobRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.jobs[id]; !ok {
		return 0, nil
	}
	delete(m.jobs, id)
	return 1, nil
}

type mockBidRepo struct {
	jobs *mockJobRepo
	bids map[string]domain.Bid

	// skipExists simula la carrera: el chequeo previo no ve la oferta concurrente.
	skipExists bool
	inserts    int
}

func newMockBidRepo(jobs *mockJobRepo) *mockBidRepo {
	return &mockBidRepo{jobs: jobs, bids: make(map[string]domain.Bid)}
}

func (m *mockBidRepo) Exists(_ context.Context, email, jobID string) (bool, error) {
	if m.skipExists {
		return false, nil
	}
	for _, bid := range m.bids {
		if bid.Email == email && bid.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBidRepo) InsertWithBidCount(_ context.Context, bid domain.Bid) error {
	for _, existing := range m.bids {
		if existing.Email == bid.Email && existing.JobID == bid.JobID {
			return repository.ErrDuplicateBid
		}
	}
	m.bids[bid.ID] = bid
	m.inserts++
	if job, ok := m.jobs.jobs[bid.JobID]; ok {
		job.BidCount++
		m.jobs.jobs[bid.JobID] = job
	}
	return nil
}

func (m *mockBidRepo) ListByBidder(_ context.Context, email string) ([]domain.Bid, error) {
	return m.filter(func(b domain.Bid) bool { return b.Email == email }), nil
}

func (m *mockBidRepo) ListByBuyer(_ context.Context, email string) ([]domain.Bid, error) {
	return m.filter(func(b domain.Bid) bool { return b.Buyer == email }), nil
}

func (m *mockBidRepo) GetByID(_ context.Context, id string) (domain.Bid, error) {
	bid, ok := m.bids[id]
	if !ok {
		return domain.Bid{}, pgx.ErrNoRows
	}
	return bid, nil
}

func (m *mockBidRepo) UpdateStatus(_ context.Context, id string, status domain.BidStatus) (int64, error) {
	bid, ok := m.bids[id]
	if !ok {
		return 0, nil
	}
	bid.Status = status
	m.bids[id] = bid
	return 1, nil
}

func (m *mockBidRepo) filter(keep func(domain.Bid) bool) []domain.Bid {
	out := []domain.Bid{}
	for _, bid := range m.bids {
		if keep(bid) {
			out = append(out, bid)
		}
	}
	return out
}
