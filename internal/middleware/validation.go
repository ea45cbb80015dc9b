package middleware

import (
	"github.com/gin-gonic/gin"
)

const validatedBodyKey = "validatedBody"

// ValidateJSON binds and validates the JSON body into a fresh T and stores
// it in the context for the handler.
func ValidateJSON[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := new(T)
		if err := c.ShouldBindJSON(body); err != nil {
			HandleBindingError(c, err)
			c.Abort()
			return
		}

		c.Set(validatedBodyKey, body)
		c.Next()
	}
}

// ValidatedBody returns the body stored by ValidateJSON
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, exists := c.Get(validatedBodyKey)
	if !exists {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok
}
