package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solosphere/internal/domain"
)

// JobRepository define el contrato de persistencia para publicaciones.
type JobRepository interface {
	List(ctx context.Context, q JobListingQuery) ([]domain.Job, error)
	ListByBuyer(ctx context.Context, email string) ([]domain.Job, error)
	GetByID(ctx context.Context, id string) (domain.Job, error)
	Insert(ctx context.Context, job domain.Job) error
	Upsert(ctx context.Context, job domain.Job) (domain.WriteResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// PgJobRepository implementa JobRepository usando pgxpool.
type PgJobRepository struct {
	pool *pgxpool.Pool
}

func NewPgJobRepository(pool *pgxpool.Pool) *PgJobRepository {
	return &PgJobRepository{pool: pool}
}

const jobColumns = `id, job_title, category, description, deadline, min_price, max_price, buyer, bid_count, created_at`

const jobEditableColumns = `job_title, category, description, deadline, min_price, max_price, buyer`

func (r *PgJobRepository) List(ctx context.Context, q JobListingQuery) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs` + q.Where() + q.Order()
	rows, err := r.pool.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PgJobRepository) ListByBuyer(ctx context.Context, email string) ([]domain.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE buyer->>'email' = $1`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PgJobRepository) GetByID(ctx context.Context, id string) (domain.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *PgJobRepository) Insert(ctx context.Context, job domain.Job) error {
	const query = `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Category,
		job.Description,
		job.Deadline,
		job.MinPrice,
		job.MaxPrice,
		job.BuyerInfo,
		job.BidCount,
		job.CreatedAt,
	)
	return err
}

// Upsert reemplaza los campos descriptivos del job o lo inserta si no existe.
// bid_count y created_at se conservan en la rama de update. Si el job existe
// con otro dueño no se toca y devuelve ErrOwnerMismatch. ModifiedCount es 0
// cuando el update deja la fila igual.
func (r *PgJobRepository) Upsert(ctx context.Context, job domain.Job) (domain.WriteResult, error) {
	const query = `
		WITH prev AS (
			SELECT ` + jobEditableColumns + ` FROM jobs WHERE id = $1
		)
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			deadline = EXCLUDED.deadline,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			buyer = EXCLUDED.buyer
		WHERE jobs.buyer->>'email' = EXCLUDED.buyer->>'email'
		RETURNING (xmax = 0) AS inserted, NOT EXISTS (
			SELECT 1 FROM prev
			WHERE (prev.job_title, prev.category, prev.description, prev.deadline,
				prev.min_price, prev.max_price, prev.buyer)
			IS NOT DISTINCT FROM (jobs.job_title, jobs.category, jobs.description, jobs.deadline,
				jobs.min_price, jobs.max_price, jobs.buyer)
		) AS modified
	`
	var inserted, modified bool
	err := r.pool.QueryRow(ctx, query,
		job.ID,
		job.Title,
		job.Category,
		job.Description,
		job.Deadline,
		job.MinPrice,
		job.MaxPrice,
		job.BuyerInfo,
		job.BidCount,
		job.CreatedAt,
	).Scan(&inserted, &modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WriteResult{}, ErrOwnerMismatch
	}
	if err != nil {
		return domain.WriteResult{}, err
	}

	if inserted {
		id := job.ID
		return domain.WriteResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	}
	res := domain.WriteResult{Acknowledged: true, MatchedCount: 1}
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *PgJobRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM jobs WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Category,
		&job.Description,
		&job.Deadline,
		&job.MinPrice,
		&job.MaxPrice,
		&job.BuyerInfo,
		&job.BidCount,
		&job.CreatedAt,
	)
	return job, err
}

func collectJobs(rows pgx.Rows) ([]domain.Job, error) {
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}
