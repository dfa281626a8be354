package domain

import (
	"strings"
	"time"
)

type BidStatus string

const (
	BidStatusPending    BidStatus = "Pending"
	BidStatusInProgress BidStatus = "In Progress"
	BidStatusAccepted   BidStatus = "Accepted"
	BidStatusRejected   BidStatus = "Rejected"
	BidStatusComplete   BidStatus = "Complete"
)

var bidStatuses = []BidStatus{
	BidStatusPending,
	BidStatusInProgress,
	BidStatusAccepted,
	BidStatusRejected,
	BidStatusComplete,
}

// ParseBidStatus normaliza un estado recibido por la API; ok es false si no es conocido.
func ParseBidStatus(raw string) (BidStatus, bool) {
	raw = strings.TrimSpace(raw)
	for _, st := range bidStatuses {
		if strings.EqualFold(raw, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Bid es una oferta de un freelancer sobre un Job.
// JobID es una referencia débil: no hay borrado en cascada.
type Bid struct {
	ID        string     `json:"_id"`
	JobID     string     `json:"jobId"`
	JobTitle  string     `json:"job_title,omitempty"`
	Category  string     `json:"category,omitempty"`
	Email     string     `json:"email"`
	Buyer     string     `json:"buyer"`
	Price     float64    `json:"price"`
	Comment   string     `json:"comment,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Status    BidStatus  `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
