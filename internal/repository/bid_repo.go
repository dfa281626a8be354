package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solosphere/internal/domain"
)

// BidRepository define el contrato de persistencia para ofertas.
type BidRepository interface {
	Exists(ctx context.Context, email, jobID string) (bool, error)
	InsertWithBidCount(ctx context.Context, bid domain.Bid) error
	ListByBidder(ctx context.Context, email string) ([]domain.Bid, error)
	ListByBuyer(ctx context.Context, email string) ([]domain.Bid, error)
	GetByID(ctx context.Context, id string) (domain.Bid, error)
	UpdateStatus(ctx context.Context, id string, status domain.BidStatus) (int64, error)
}

// PgBidRepository implementa BidRepository usando pgxpool.
type PgBidRepository struct {
	pool *pgxpool.Pool
}

func NewPgBidRepository(pool *pgxpool.Pool) *PgBidRepository {
	return &PgBidRepository{pool: pool}
}

const bidColumns = `id, job_id, job_title, category, email, buyer, price, comment, deadline, status, created_at`

func (r *PgBidRepository) Exists(ctx context.Context, email, jobID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM bids WHERE email = $1 AND job_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email, jobID).Scan(&exists)
	return exists, err
}

// InsertWithBidCount inserta la oferta e incrementa bid_count del job padre en
// la misma transacción. El índice único (email, job_id) resuelve la carrera
// entre dos envíos simultáneos: el segundo recibe ErrDuplicateBid.
func (r *PgBidRepository) InsertWithBidCount(ctx context.Context, bid domain.Bid) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email, job_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, insert,
		bid.ID,
		bid.JobID,
		bid.JobTitle,
		bid.Category,
		bid.Email,
		bid.Buyer,
		bid.Price,
		bid.Comment,
		bid.Deadline,
		string(bid.Status),
		bid.CreatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateBid
	}

	// Referencia débil: si el job ya no existe el update no afecta filas.
	const increment = `UPDATE jobs SET bid_count = bid_count + 1 WHERE id = $1::uuid`
	if _, err := tx.Exec(ctx, increment, bid.JobID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgBidRepository) ListByBidder(ctx context.Context, email string) ([]domain.Bid, error) {
	const query = `SELECT ` + bidColumns + ` FROM bids WHERE email = $1`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectBids(rows)
}

func (r *PgBidRepository) ListByBuyer(ctx context.Context, email string) ([]domain.Bid, error) {
	const query = `SELECT ` + bidColumns + ` FROM bids WHERE buyer = $1`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	return collectBids(rows)
}

func (r *PgBidRepository) GetByID(ctx context.Context, id string) (domain.Bid, error) {
	const query = `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	return scanBid(r.pool.QueryRow(ctx, query, id))
}

func (r *PgBidRepository) UpdateStatus(ctx context.Context, id string, status domain.BidStatus) (int64, error) {
	const query = `UPDATE bids SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanBid(row pgx.Row) (domain.Bid, error) {
	var (
		bid    domain.Bid
		status string
	)
	err := row.Scan(
		&bid.ID,
		&bid.JobID,
		&bid.JobTitle,
		&bid.Category,
		&bid.Email,
		&bid.Buyer,
		&bid.Price,
		&bid.Comment,
		&bid.Deadline,
		&status,
		&bid.CreatedAt,
	)
	bid.Status = domain.BidStatus(status)
	return bid, err
}

func collectBids(rows pgx.Rows) ([]domain.Bid, error) {
	defer rows.Close()

	bids := []domain.Bid{}
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}
