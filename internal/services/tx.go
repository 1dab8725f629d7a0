package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/ssedata"
)

// runInTransaction reuses the caller's transaction when one is passed and
// opens a fresh one otherwise. Services never nest transactions.
func runInTransaction(ctx context.Context, db *gorm.DB, tx *gorm.DB, fn func(txx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// queueSSE appends a realtime message on the owning teacher's channel if the
// request carries an SSE queue; messages are flushed post-commit.
func queueSSE(ctx context.Context, teacherID uuid.UUID, event sse.SSEEvent, data any) {
	ssd := ssedata.GetSSEData(ctx)
	if ssd == nil {
		return
	}
	ssd.AppendMessage(sse.SSEMessage{
		Channel: teacherID.String(),
		Event:   event,
		Data:    data,
	})
}
