package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lead is the subset of a lead row the submission workflow needs.
type Lead struct {
	ID          uuid.UUID
	ExternalID  string
	Name        string
	Score       int
	GeneratedAt time.Time
}

// Broker is the subset of a broker row the submission workflow needs.
type Broker struct {
	ID                 uuid.UUID
	ExternalID         string
	Name               string
	Email              string
	IsActive           bool
	TotalFeedbackCount int
	AverageRating      float64
}

// Feedback is one row of the feedback ledger.
type Feedback struct {
	ID                 uuid.UUID
	LeadID             uuid.UUID
	BrokerID           uuid.UUID
	Rating             int
	Status             string
	Issues             []string
	Comments           string
	LeadScore          *int
	FormCompletionTime *int
	SessionID          *string
	UserAgent          *string
	TouchDevice        bool
	SubmittedAt        time.Time
	CreatedAt          time.Time
}

// FeedbackView is a ledger row joined with its lead and broker.
type FeedbackView struct {
	Feedback
	LeadExternalID   string
	LeadName         string
	LeadCurrentScore int
	BrokerExternalID string
	BrokerName       string
	BrokerCompany    *string
}

// InsertParams contains parameters for appending to the ledger.
type InsertParams struct {
	LeadID             uuid.UUID
	BrokerID           uuid.UUID
	Rating             int
	Status             string
	Issues             []string
	Comments           string
	LeadScore          *int
	FormCompletionTime *int
	SessionID          *string
	UserAgent          *string
	TouchDevice        bool
	IPAddress          *string
	// SubmittedAt defaults to the database wall clock at insert time when nil.
	SubmittedAt *time.Time
}

// BrokerStats is the derived aggregate kept on the broker row.
type BrokerStats struct {
	TotalFeedbackCount int
	AverageRating      float64
}

// TxStore exposes the operations that run inside one submission transaction.
type TxStore interface {
	// ResolveOrCreateLead returns the lead for externalID, creating a
	// placeholder when none exists. created is true only for the caller whose
	// insert won.
	ResolveOrCreateLead(ctx context.Context, externalID string) (lead Lead, created bool, err error)
	// ResolveOrCreateBroker is the broker counterpart of ResolveOrCreateLead.
	ResolveOrCreateBroker(ctx context.Context, externalID string) (broker Broker, created bool, err error)
	// InsertFeedback appends to the ledger. A second row for the same
	// (lead, broker) pair is rejected with a DUPLICATE_FEEDBACK conflict.
	InsertFeedback(ctx context.Context, params InsertParams) (Feedback, error)
	// RefreshBrokerStats recomputes the broker aggregate from the ledger.
	RefreshBrokerStats(ctx context.Context, brokerID uuid.UUID) (BrokerStats, error)
}

// FeedbackReader provides read operations over the ledger.
type FeedbackReader interface {
	GetLatestByLeadExternalID(ctx context.Context, externalLeadID string) (FeedbackView, error)
	ListByBrokerExternalID(ctx context.Context, externalBrokerID string, limit, offset int) ([]FeedbackView, int, error)
	ListRecent(ctx context.Context, limit int) ([]FeedbackView, error)
	ListBrokerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Repository is the complete feedback persistence boundary.
type Repository interface {
	FeedbackReader
	// InTx runs fn in one READ COMMITTED transaction, committing when fn
	// returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}
