package mw

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ClientIDHeader identifies a browser across requests.
	ClientIDHeader = "X-Client-ID"
	clientIDKey    = "client_id"
)

// ClientID reads the client id header, issuing a fresh UUID when it is
// missing or malformed. The id is echoed in the response header.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(clientIDKey, id)
		c.Header(ClientIDHeader, id)
		c.Next()
	}
}

// ClientIDFrom returns the id set by ClientID.
func ClientIDFrom(c *gin.Context) string {
	return c.GetString(clientIDKey)
}
