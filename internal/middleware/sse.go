package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/ssedata"
)

// Publisher delivers a realtime message to subscribers, either directly via
// the in-process hub or through the redis bus when one is configured.
type Publisher func(msg sse.SSEMessage)

type SSEMiddleware struct {
	log     *logger.Logger
	publish Publisher
}

func NewSSEMiddleware(log *logger.Logger, publish Publisher) *SSEMiddleware {
	return &SSEMiddleware{
		log:     log.With("middleware", "SSEMiddleware"),
		publish: publish,
	}
}

// AttachAndFlush queues a per-request SSE buffer on the context and publishes
// whatever the handlers left behind once the request finished. Handlers queue
// messages only after their transactions commit, so nothing is announced for
// work that rolled back.
func (sm *SSEMiddleware) AttachAndFlush() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ssedata.WithSSEData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		ssd := ssedata.GetSSEData(c.Request.Context())
		if ssd == nil || len(ssd.Messages) == 0 {
			return
		}
		for _, msg := range ssd.Messages {
			sm.publish(msg)
		}
		sm.log.Debug("Flushed SSE messages", "count", len(ssd.Messages))
	}
}
