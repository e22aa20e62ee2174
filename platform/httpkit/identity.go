package httpkit

import (
	"github.com/gin-gonic/gin"
)

// Identity represents the caller authenticated by AuthRequired.
// Handlers read it without touching Gin context keys.
type Identity interface {
	// Subject returns the token's sub claim.
	Subject() string
	// IsAuthenticated returns true if a valid token was presented.
	IsAuthenticated() bool
}

type identity struct {
	subject string
}

func (i identity) Subject() string {
	return i.subject
}

func (i identity) IsAuthenticated() bool {
	return i.subject != ""
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if no subject is present.
func GetIdentity(c *gin.Context) Identity {
	subject, _ := c.Get(ContextSubjectKey)
	value, _ := subject.(string)
	return identity{subject: value}
}
