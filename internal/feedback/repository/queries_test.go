package repository

import (
	"strings"
	"testing"
)

func requireFragments(t *testing.T, name, query string, fragments ...string) {
	t.Helper()
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	for _, fragment := range fragments {
		if !strings.Contains(normalized, fragment) {
			t.Fatalf("%s: expected query fragment %q to be present", name, fragment)
		}
	}
}

func TestPlaceholderInsertsNeverFailOnConflict(t *testing.T) {
	requireFragments(t, "lead placeholder", insertPlaceholderLeadQuery,
		"insert into leads (external_id, name, score, source)",
		"on conflict (external_id) do nothing",
		"returning id",
	)
	requireFragments(t, "broker placeholder", insertPlaceholderBrokerQuery,
		"insert into brokers (external_id, name, email, is_active)",
		"on conflict (external_id) do nothing",
		"returning id",
	)
}

func TestFeedbackInsertDefersUniquenessToStore(t *testing.T) {
	requireFragments(t, "insert feedback", insertFeedbackQuery,
		"on conflict (lead_id, broker_id) do nothing",
		"coalesce($13::timestamptz, clock_timestamp())",
		"returning id, lead_id, broker_id",
	)
}

func TestBrokerRefreshIsFullRecomputeUnderLock(t *testing.T) {
	requireFragments(t, "lock broker", lockBrokerQuery,
		"from brokers where id = $1 for no key update",
	)
	requireFragments(t, "refresh stats", refreshBrokerStatsQuery,
		"count(*)::int as total",
		"coalesce(avg(f.rating)::float8, 0) as average",
		"where f.broker_id = $1",
		"set total_feedback_count = s.total",
		"average_rating = s.average",
	)
	if strings.Contains(strings.ToLower(refreshBrokerStatsQuery), "total_feedback_count + 1") {
		t.Fatal("broker stats must be recomputed, not incremented")
	}
}

func TestLatestFeedbackByLeadOrdersNewestFirst(t *testing.T) {
	requireFragments(t, "latest by lead", getLatestByLeadExternalIDQuery,
		"where l.external_id = $1",
		"order by f.submitted_at desc",
		"limit 1",
	)
}

func TestBrokerListingIsScopedAndPaged(t *testing.T) {
	requireFragments(t, "list by broker", listByBrokerExternalIDQuery,
		"join brokers b on b.id = f.broker_id",
		"where b.external_id = $1",
		"limit $2 offset $3",
	)
	requireFragments(t, "count by broker", countByBrokerExternalIDQuery,
		"where b.external_id = $1",
	)
}
