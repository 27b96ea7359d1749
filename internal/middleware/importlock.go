package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// importLockTTL bounds how long an abandoned lock can block further imports.
// A destructive restore on a very large account is a long transaction, so the
// window is generous.
const importLockTTL = 10 * time.Minute

// ImportLock returns a middleware that takes an advisory per-account lock for
// the duration of an import request. The porting engine itself does not guard
// against two concurrent imports on one account; this is the calling layer's
// mutual exclusion around the whole call.
func ImportLock(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("waylog:import_lock:%s", userID)
		ctx := c.Request.Context()

		ok, err := rdb.SetNX(ctx, key, "1", importLockTTL).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			// Redis being down must not block imports entirely.
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      0,
				"code":    "import_in_progress",
				"message": "another import is already running for this account",
			})
			return
		}
		// Unlock with a fresh context: the request context is canceled when
		// the client disconnects, which must not leave the lock held for the
		// full TTL.
		defer rdb.Del(context.Background(), key)

		c.Next()
	}
}
