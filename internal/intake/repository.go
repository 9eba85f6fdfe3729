package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Request is one archived appointment request.
type Request struct {
	ID              string    `json:"id"`
	PracticeID      string    `json:"practiceId"`
	AppointmentType string    `json:"appointmentType"`
	ClientEmail     string    `json:"clientEmail"`
	Payload         []byte    `json:"payload"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Repository archives accepted requests for the practice dashboard.
type Repository interface {
	Create(ctx context.Context, req *Request) (*Request, error)
}

// PostgresRepository stores requests in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("intake: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *Request) (*Request, error) {
	if !json.Valid(req.Payload) {
		return nil, fmt.Errorf("intake: payload is not valid JSON")
	}

	id := uuid.New()
	query := `
		INSERT INTO appointment_requests (id, practice_id, appointment_type, client_email, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.PracticeID,
		req.AppointmentType,
		req.ClientEmail,
		req.Payload,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("intake: insert failed: %w", err)
	}

	return &Request{
		ID:              id.String(),
		PracticeID:      req.PracticeID,
		AppointmentType: req.AppointmentType,
		ClientEmail:     req.ClientEmail,
		Payload:         req.Payload,
		CreatedAt:       createdAt,
	}, nil
}
