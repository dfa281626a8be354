package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"solosphere/internal/domain"
	"solosphere/internal/repository"
	"solosphere/internal/service"
)

type mockJobRepo struct {
	jobs  map[string]domain.Job
	order []string
	// writes cuenta las mutaciones para verificar que un 401 no toca la base.
	writes int
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]domain.Job)}
}

func (m *mockJobRepo) List(_ context.Context, _ repository.JobListingQuery) ([]domain.Job, error) {
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
	m.writes++
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
	m.writes++
	job.BidCount = existing.BidCount
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
	m.writes++
	delete(m.jobs, id)
	return 1, nil
}

type mockBidRepo struct {
	jobs   *mockJobRepo
	bids   map[string]domain.Bid
	writes int
}

func newMockBidRepo(jobs *mockJobRepo) *mockBidRepo {
	return &mockBidRepo{jobs: jobs, bids: make(map[string]domain.Bid)}
}

func (m *mockBidRepo) Exists(_ context.Context, email, jobID string) (bool, error) {
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
	m.writes++
	m.bids[bid.ID] = bid
	if job, ok := m.jobs.jobs[bid.JobID]; ok {
		job.BidCount++
		m.jobs.jobs[bid.JobID] = job
	}
	return nil
}

func (m *mockBidRepo) ListByBidder(_ context.Context, email string) ([]domain.Bid, error) {
	out := []domain.Bid{}
	for _, bid := range m.bids {
		if bid.Email == email {
			out = append(out, bid)
		}
	}
	return out, nil
}

func (m *mockBidRepo) ListByBuyer(_ context.Context, email string) ([]domain.Bid, error) {
	out := []domain.Bid{}
	for _, bid := range m.bids {
		if bid.Buyer == email {
			out = append(out, bid)
		}
	}
	return out, nil
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
	m.writes++
	bid.Status = status
	m.bids[id] = bid
	return 1, nil
}

type testServer struct {
	router *gin.Engine
	jobs   *mockJobRepo
	bids   *mockBidRepo
	jwt    *service.JWTService
}

type testServerConfig struct {
	production bool
	limiter    service.IssueRateLimiter
	revocation service.RevocationStore
	proxies    []string
}

func setupTestServer(cfg testServerConfig) *testServer {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	jobs := newMockJobRepo()
	bids := newMockBidRepo(jobs)
	jwtSvc := service.NewJWTServiceWithStore("secret", 5*time.Hour, cfg.revocation)

	authH := NewAuthHandler(logger, jwtSvc, cfg.limiter, NewCookieOptions(cfg.production), nil)
	jobH := NewJobHandler(logger, service.NewJobService(logger, jobs), nil)
	bidH := NewBidHandler(logger, service.NewBidService(logger, bids, jobs, nil), nil)
	router := NewRouter(logger, RouterOptions{
		JWT:            jwtSvc,
		AllowedOrigins: []string{"http://localhost:5173"},
		TrustedProxies: cfg.proxies,
	}, authH, jobH, bidH)

	return &testServer{router: router, jobs: jobs, bids: bids, jwt: jwtSvc}
}

func performRequest(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == TokenCookieName {
			return cookie
		}
	}
	return nil
}

// login pide un token por POST /jwt y devuelve la cookie lista para reenviar.
func (s *testServer) login(email string) *http.Cookie {
	rec := performRequest(s.router, http.MethodPost, "/jwt", map[string]string{"email": email})
	cookie := tokenCookie(rec)
	if cookie == nil {
		return nil
	}
	return &http.Cookie{Name: cookie.Name, Value: cookie.Value}
}
