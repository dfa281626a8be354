package domain

import "time"

// BuyerInfo identifica al dueño de una publicación.
type BuyerInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// Job es una publicación de trabajo del marketplace.
type Job struct {
	ID          string     `json:"_id"`
	Title       string     `json:"job_title"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	MinPrice    float64    `json:"min_price"`
	MaxPrice    float64    `json:"max_price"`
	BuyerInfo   BuyerInfo  `json:"buyerInfo"`
	BidCount    int        `json:"bid_count"`
	CreatedAt   time.Time  `json:"created_at"`
}
