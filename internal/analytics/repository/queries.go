package repository

// Every windowed query takes $1 start, $2 end (inclusive) and $3 an optional
// broker external id.
const windowPredicate = `
	f.submitted_at >= $1 AND f.submitted_at <= $2
	AND ($3::text IS NULL OR b.external_id = $3)`

const overviewQuery = `
	WITH windowed AS (
		SELECT f.rating, f.form_completion_time
		FROM feedback f
		JOIN brokers b ON b.id = f.broker_id
		WHERE` + windowPredicate + `
	)
	SELECT
		(SELECT COUNT(*)::int FROM windowed),
		(SELECT COUNT(*)::int FROM leads),
		(SELECT COUNT(*)::int FROM brokers WHERE is_active),
		(SELECT COALESCE(AVG(rating)::float8, 0) FROM windowed),
		(SELECT COALESCE(AVG(form_completion_time)::float8, 0) FROM windowed)`

const ratingCountsQuery = `
	SELECT f.rating, COUNT(*)::int
	FROM feedback f
	JOIN brokers b ON b.id = f.broker_id
	WHERE` + windowPredicate + `
	GROUP BY f.rating
	ORDER BY f.rating`

const issueCountsQuery = `
	SELECT btrim(tag) AS issue, COUNT(*)::int AS occurrences
	FROM feedback f
	JOIN brokers b ON b.id = f.broker_id
	CROSS JOIN LATERAL unnest(f.issues) AS t(tag)
	WHERE` + windowPredicate + `
	AND tag IS NOT NULL AND btrim(tag) <> ''
	GROUP BY btrim(tag)
	ORDER BY occurrences DESC, issue ASC
	LIMIT $4`

const statusCountsQuery = `
	SELECT f.status, COUNT(*)::int AS occurrences
	FROM feedback f
	JOIN brokers b ON b.id = f.broker_id
	WHERE` + windowPredicate + `
	GROUP BY f.status
	ORDER BY occurrences DESC, f.status ASC`

// The score captured with the feedback wins over the lead's current score.
const scoreGroupsQuery = `
	SELECT COALESCE(f.lead_score, l.score, 0) AS score, COUNT(*)::int, SUM(f.rating)::int
	FROM feedback f
	JOIN leads l ON l.id = f.lead_id
	JOIN brokers b ON b.id = f.broker_id
	WHERE` + windowPredicate + `
	GROUP BY 1`

const responseTimesQuery = `
	SELECT
		COALESCE(AVG(f.form_completion_time)::float8, 0),
		COALESCE(MIN(f.form_completion_time), 0)::int,
		COALESCE(MAX(f.form_completion_time), 0)::int,
		COUNT(*)::int
	FROM feedback f
	JOIN brokers b ON b.id = f.broker_id
	WHERE` + windowPredicate + `
	AND f.form_completion_time IS NOT NULL`
