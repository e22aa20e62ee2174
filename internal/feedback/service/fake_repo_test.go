package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/internal/feedback/repository"
	"lead_feedback_backend/platform/apperr"

	"github.com/google/uuid"
)

// memRepo is a transactional in-memory Repository. Transactions are
// serialised by a mutex and rolled back by restoring a snapshot.
type memRepo struct {
	mu    sync.Mutex
	state memState
	clock time.Time

	// hooks run inside the transaction and may fail it.
	beforeInsert  func(ctx context.Context) error
	beforeRefresh func(ctx context.Context) error
}

type memState struct {
	leads    map[string]repository.Lead
	brokers  map[string]repository.Broker
	feedback []repository.Feedback
}

func newMemRepo() *memRepo {
	return &memRepo{
		state: memState{
			leads:   map[string]repository.Lead{},
			brokers: map[string]repository.Broker{},
		},
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s memState) clone() memState {
	out := memState{
		leads:    make(map[string]repository.Lead, len(s.leads)),
		brokers:  make(map[string]repository.Broker, len(s.brokers)),
		feedback: make([]repository.Feedback, len(s.feedback)),
	}
	for k, v := range s.leads {
		out.leads[k] = v
	}
	for k, v := range s.brokers {
		out.brokers[k] = v
	}
	copy(out.feedback, s.feedback)
	return out
}

func (r *memRepo) seedLead(externalID, name string, score int) repository.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead := repository.Lead{ID: uuid.New(), ExternalID: externalID, Name: name, Score: score, GeneratedAt: r.clock}
	r.state.leads[externalID] = lead
	return lead
}

func (r *memRepo) seedBroker(externalID, name string) repository.Broker {
	r.mu.Lock()
	defer r.mu.Unlock()
	broker := repository.Broker{ID: uuid.New(), ExternalID: externalID, Name: name, Email: externalID + "@broker.test", IsActive: true}
	r.state.brokers[externalID] = broker
	return broker
}

func (r *memRepo) broker(externalID string) (repository.Broker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.state.brokers[externalID]
	return b, ok
}

func (r *memRepo) setBrokerStats(externalID string, count int, avg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.state.brokers[externalID]
	b.TotalFeedbackCount = count
	b.AverageRating = avg
	r.state.brokers[externalID] = b
}

func (r *memRepo) counts() (leads, brokers, feedback int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.leads), len(r.state.brokers), len(r.state.feedback)
}

func (r *memRepo) InTx(ctx context.Context, fn func(tx repository.TxStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()
	if err := fn(&memTx{repo: r}); err != nil {
		r.state = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

type memTx struct {
	repo *memRepo
}

func (t *memTx) ResolveOrCreateLead(_ context.Context, externalID string) (repository.Lead, bool, error) {
	if lead, ok := t.repo.state.leads[externalID]; ok {
		return lead, false, nil
	}
	lead := repository.Lead{
		ID:          uuid.New(),
		ExternalID:  externalID,
		Name:        domain.PlaceholderLeadName,
		Score:       domain.PlaceholderLeadScore,
		GeneratedAt: t.repo.clock,
	}
	t.repo.state.leads[externalID] = lead
	return lead, true, nil
}

func (t *memTx) ResolveOrCreateBroker(_ context.Context, externalID string) (repository.Broker, bool, error) {
	if broker, ok := t.repo.state.brokers[externalID]; ok {
		return broker, false, nil
	}
	broker := repository.Broker{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       domain.PlaceholderBrokerName,
		Email:      domain.PlaceholderBrokerEmail(externalID),
		IsActive:   true,
	}
	t.repo.state.brokers[externalID] = broker
	return broker, true, nil
}

func (t *memTx) InsertFeedback(ctx context.Context, p repository.InsertParams) (repository.Feedback, error) {
	if t.repo.beforeInsert != nil {
		if err := t.repo.beforeInsert(ctx); err != nil {
			return repository.Feedback{}, err
		}
	}
	if err := domain.ValidateRating(p.Rating); err != nil {
		return repository.Feedback{}, err
	}
	if err := domain.ValidateStatus(p.Status); err != nil {
		return repository.Feedback{}, err
	}
	if !t.leadExists(p.LeadID) || !t.brokerExists(p.BrokerID) {
		return repository.Feedback{}, domain.ErrInvalidReference(nil)
	}
	for _, existing := range t.repo.state.feedback {
		if existing.LeadID == p.LeadID && existing.BrokerID == p.BrokerID {
			return repository.Feedback{}, domain.ErrDuplicateFeedback()
		}
	}

	t.repo.clock = t.repo.clock.Add(time.Second)
	submittedAt := t.repo.clock
	if p.SubmittedAt != nil {
		submittedAt = *p.SubmittedAt
	}
	fb := repository.Feedback{
		ID:                 uuid.New(),
		LeadID:             p.LeadID,
		BrokerID:           p.BrokerID,
		Rating:             p.Rating,
		Status:             p.Status,
		Issues:             append([]string{}, p.Issues...),
		Comments:           p.Comments,
		LeadScore:          p.LeadScore,
		FormCompletionTime: p.FormCompletionTime,
		SessionID:          p.SessionID,
		UserAgent:          p.UserAgent,
		TouchDevice:        p.TouchDevice,
		SubmittedAt:        submittedAt,
		CreatedAt:          t.repo.clock,
	}
	t.repo.state.feedback = append(t.repo.state.feedback, fb)
	return fb, nil
}

func (t *memTx) RefreshBrokerStats(ctx context.Context, brokerID uuid.UUID) (repository.BrokerStats, error) {
	if t.repo.beforeRefresh != nil {
		if err := t.repo.beforeRefresh(ctx); err != nil {
			return repository.BrokerStats{}, err
		}
	}
	for key, broker := range t.repo.state.brokers {
		if broker.ID != brokerID {
			continue
		}
		count, sum := 0, 0
		for _, fb := range t.repo.state.feedback {
			if fb.BrokerID == brokerID {
				count++
				sum += fb.Rating
			}
		}
		broker.TotalFeedbackCount = count
		broker.AverageRating = 0
		if count > 0 {
			broker.AverageRating = float64(sum) / float64(count)
		}
		t.repo.state.brokers[key] = broker
		return repository.BrokerStats{TotalFeedbackCount: count, AverageRating: broker.AverageRating}, nil
	}
	return repository.BrokerStats{}, domain.ErrInvalidReference(nil)
}

func (t *memTx) leadExists(id uuid.UUID) bool {
	for _, lead := range t.repo.state.leads {
		if lead.ID == id {
			return true
		}
	}
	return false
}

func (t *memTx) brokerExists(id uuid.UUID) bool {
	for _, broker := range t.repo.state.brokers {
		if broker.ID == id {
			return true
		}
	}
	return false
}

func (r *memRepo) views(filter func(repository.FeedbackView) bool) []repository.FeedbackView {
	leadsByID := map[uuid.UUID]repository.Lead{}
	for _, l := range r.state.leads {
		leadsByID[l.ID] = l
	}
	brokersByID := map[uuid.UUID]repository.Broker{}
	for _, b := range r.state.brokers {
		brokersByID[b.ID] = b
	}

	out := make([]repository.FeedbackView, 0)
	for _, fb := range r.state.feedback {
		lead := leadsByID[fb.LeadID]
		broker := brokersByID[fb.BrokerID]
		v := repository.FeedbackView{
			Feedback:         fb,
			LeadExternalID:   lead.ExternalID,
			LeadName:         lead.Name,
			LeadCurrentScore: lead.Score,
			BrokerExternalID: broker.ExternalID,
			BrokerName:       broker.Name,
		}
		if filter == nil || filter(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

func (r *memRepo) GetLatestByLeadExternalID(_ context.Context, externalLeadID string) (repository.FeedbackView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := r.views(func(v repository.FeedbackView) bool { return v.LeadExternalID == externalLeadID })
	if len(views) == 0 {
		return repository.FeedbackView{}, apperr.NotFound("no feedback found for this lead")
	}
	return views[0], nil
}

func (r *memRepo) ListByBrokerExternalID(_ context.Context, externalBrokerID string, limit, offset int) ([]repository.FeedbackView, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.state.brokers[externalBrokerID]; !ok {
		return nil, 0, apperr.NotFound("broker not found")
	}
	views := r.views(func(v repository.FeedbackView) bool { return v.BrokerExternalID == externalBrokerID })
	total := len(views)
	if offset >= total {
		return []repository.FeedbackView{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return views[offset:end], total, nil
}

func (r *memRepo) ListRecent(_ context.Context, limit int) ([]repository.FeedbackView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := r.views(nil)
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (r *memRepo) ListBrokerIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.state.brokers))
	for _, b := range r.state.brokers {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

var _ repository.Repository = (*memRepo)(nil)
