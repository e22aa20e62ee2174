package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/sanitize"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinLeadScore     = 0
	MaxLeadScore     = 100
	MaxExternalIDLen = 50
	MaxCommentLength = 500
	MaxIssues        = 20
	MaxIssueLength   = 100
	MaxSessionIDLen  = 100
	MaxUserAgentLen  = 512
)

// Submission is one broker's rating of one lead, keyed by external ids.
type Submission struct {
	ExternalLeadID     string
	ExternalBrokerID   string
	Rating             int
	Status             Status
	Issues             []string
	Comments           string
	LeadScore          *int
	FormCompletionTime *int
	SessionID          *string
	UserAgent          *string
	TouchDevice        bool
	ClientIP           *string
	// SubmittedAt is set by the store when zero.
	SubmittedAt time.Time
}

// Validate checks the submission against the ledger's acceptance rules.
// It expects Normalize to have run first.
func (s Submission) Validate() error {
	var problems []string

	if s.ExternalLeadID == "" {
		problems = append(problems, "leadId is required")
	} else if len(s.ExternalLeadID) > MaxExternalIDLen {
		problems = append(problems, fmt.Sprintf("leadId must be at most %d characters", MaxExternalIDLen))
	}
	if s.ExternalBrokerID == "" {
		problems = append(problems, "brokerId is required")
	} else if len(s.ExternalBrokerID) > MaxExternalIDLen {
		problems = append(problems, fmt.Sprintf("brokerId must be at most %d characters", MaxExternalIDLen))
	}
	if err := ValidateRating(s.Rating); err != nil {
		problems = append(problems, err.Error())
	}
	if err := ValidateStatus(string(s.Status)); err != nil {
		problems = append(problems, err.Error())
	}
	if utf8.RuneCountInString(s.Comments) > MaxCommentLength {
		problems = append(problems, fmt.Sprintf("comments must be at most %d characters", MaxCommentLength))
	}
	if len(s.Issues) > MaxIssues {
		problems = append(problems, fmt.Sprintf("at most %d issues are allowed", MaxIssues))
	}
	for _, issue := range s.Issues {
		if utf8.RuneCountInString(issue) > MaxIssueLength {
			problems = append(problems, fmt.Sprintf("issues must be at most %d characters each", MaxIssueLength))
			break
		}
	}
	if s.FormCompletionTime != nil && *s.FormCompletionTime < 0 {
		problems = append(problems, "formCompletionTime must not be negative")
	}
	if s.SessionID != nil && len(*s.SessionID) > MaxSessionIDLen {
		problems = append(problems, fmt.Sprintf("sessionId must be at most %d characters", MaxSessionIDLen))
	}

	if len(problems) > 0 {
		return apperr.Validation(strings.Join(problems, "; ")).
			WithCode(apperr.CodeValidation).
			WithDetails(problems)
	}
	return nil
}

// Normalize trims ids, drops blank issue tags, clamps the lead score and
// truncates the user agent. Comment sanitisation is left to the caller.
func (s Submission) Normalize() Submission {
	s.ExternalLeadID = strings.TrimSpace(s.ExternalLeadID)
	s.ExternalBrokerID = strings.TrimSpace(s.ExternalBrokerID)
	s.Status = Status(strings.TrimSpace(string(s.Status)))
	s.Comments = strings.TrimSpace(s.Comments)

	s.Issues = sanitize.Tags(s.Issues)

	if s.LeadScore != nil {
		clamped := ClampLeadScore(*s.LeadScore)
		s.LeadScore = &clamped
	}
	if s.UserAgent != nil && len(*s.UserAgent) > MaxUserAgentLen {
		truncated := truncateUTF8(*s.UserAgent, MaxUserAgentLen)
		s.UserAgent = &truncated
	}
	return s
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "")
}

// ValidateRating rejects ratings outside [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperr.Validation(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)).
			WithCode(apperr.CodeValidation)
	}
	return nil
}

// ValidateStatus rejects statuses outside the accepted set.
func ValidateStatus(status string) error {
	if !IsKnownStatus(status) {
		return apperr.Validation(fmt.Sprintf("status %q is not a recognised lead status", status)).
			WithCode(apperr.CodeValidation)
	}
	return nil
}

// ClampLeadScore forces a score into [MinLeadScore, MaxLeadScore].
func ClampLeadScore(score int) int {
	if score < MinLeadScore {
		return MinLeadScore
	}
	if score > MaxLeadScore {
		return MaxLeadScore
	}
	return score
}
