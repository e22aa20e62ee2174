package domain

import "fmt"

// Placeholder values used when feedback names an external id the store has
// not seen before.
const (
	PlaceholderLeadName       = "Unknown Lead"
	PlaceholderLeadScore      = 0
	PlaceholderLeadSource     = "feedback-form"
	PlaceholderBrokerName     = "Unknown Broker"
	placeholderBrokerEmailFmt = "%s@example.com"
	placeholderSuffixEmailFmt = "%s+%s@example.com"
)

// PlaceholderBrokerEmail returns the synthesized unique email for a broker
// created from an unknown external id.
func PlaceholderBrokerEmail(externalID string) string {
	return fmt.Sprintf(placeholderBrokerEmailFmt, externalID)
}

// PlaceholderBrokerEmailWithSuffix disambiguates the synthesized email when
// another broker already owns the plain form.
func PlaceholderBrokerEmailWithSuffix(externalID, suffix string) string {
	return fmt.Sprintf(placeholderSuffixEmailFmt, externalID, suffix)
}
