package repository

const selectLeadByExternalIDQuery = `
	SELECT id, external_id, name, score, generated_at
	FROM leads
	WHERE external_id = $1`

const insertPlaceholderLeadQuery = `
	INSERT INTO leads (external_id, name, score, source)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (external_id) DO NOTHING
	RETURNING id, external_id, name, score, generated_at`

const selectBrokerByExternalIDQuery = `
	SELECT id, external_id, name, email, is_active, total_feedback_count, average_rating
	FROM brokers
	WHERE external_id = $1`

// An email owned by another broker still raises 23505; the resolver runs this
// under a savepoint and retries with a suffixed email.
const insertPlaceholderBrokerQuery = `
	INSERT INTO brokers (external_id, name, email, is_active)
	VALUES ($1, $2, $3, true)
	ON CONFLICT (external_id) DO NOTHING
	RETURNING id, external_id, name, email, is_active, total_feedback_count, average_rating`

const insertFeedbackQuery = `
	INSERT INTO feedback (
		lead_id, broker_id, rating, status, issues, comments, lead_score,
		form_completion_time, session_id, user_agent, touch_device, ip_address, submitted_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::text::inet, COALESCE($13::timestamptz, clock_timestamp()))
	ON CONFLICT (lead_id, broker_id) DO NOTHING
	RETURNING id, lead_id, broker_id, rating, status, issues, comments, lead_score,
		form_completion_time, session_id, user_agent, touch_device, submitted_at, created_at`

// FOR NO KEY UPDATE serialises refreshers of one broker without conflicting
// with the KEY SHARE locks taken by feedback foreign keys.
const lockBrokerQuery = `
	SELECT id FROM brokers WHERE id = $1 FOR NO KEY UPDATE`

// Runs as its own statement after the lock so its snapshot includes every
// feedback row committed by earlier lock holders.
const refreshBrokerStatsQuery = `
	UPDATE brokers b
	SET total_feedback_count = s.total,
		average_rating = s.average,
		updated_at = now()
	FROM (
		SELECT COUNT(*)::int AS total, COALESCE(AVG(f.rating)::float8, 0) AS average
		FROM feedback f
		WHERE f.broker_id = $1
	) s
	WHERE b.id = $1
	RETURNING b.total_feedback_count, b.average_rating`

const feedbackViewColumns = `
	f.id, f.lead_id, f.broker_id, f.rating, f.status, f.issues, f.comments, f.lead_score,
	f.form_completion_time, f.session_id, f.user_agent, f.touch_device, f.submitted_at, f.created_at,
	l.external_id, l.name, l.score, b.external_id, b.name, b.company`

const getLatestByLeadExternalIDQuery = `
	SELECT` + feedbackViewColumns + `
	FROM feedback f
	JOIN leads l ON l.id = f.lead_id
	JOIN brokers b ON b.id = f.broker_id
	WHERE l.external_id = $1
	ORDER BY f.submitted_at DESC, f.created_at DESC
	LIMIT 1`

const brokerExistsQuery = `SELECT EXISTS(SELECT 1 FROM brokers WHERE external_id = $1)`

const countByBrokerExternalIDQuery = `
	SELECT COUNT(*)
	FROM feedback f
	JOIN brokers b ON b.id = f.broker_id
	WHERE b.external_id = $1`

const listByBrokerExternalIDQuery = `
	SELECT` + feedbackViewColumns + `
	FROM feedback f
	JOIN leads l ON l.id = f.lead_id
	JOIN brokers b ON b.id = f.broker_id
	WHERE b.external_id = $1
	ORDER BY f.submitted_at DESC, f.id ASC
	LIMIT $2 OFFSET $3`

const listRecentQuery = `
	SELECT` + feedbackViewColumns + `
	FROM feedback f
	JOIN leads l ON l.id = f.lead_id
	JOIN brokers b ON b.id = f.broker_id
	ORDER BY f.submitted_at DESC, f.id ASC
	LIMIT $1`

const listBrokerIDsQuery = `SELECT id FROM brokers ORDER BY id`
