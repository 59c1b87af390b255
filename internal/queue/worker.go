package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// HandleSchedulePostTask fires when a queued post reaches its scheduled time.
// Publish failures are recorded on the post itself, so the task is not retried.
func (j *Queue) HandleSchedulePostTask(ctx context.Context, task *asynq.Task) error {
	var payload SchedulePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.ps.PublishPost(ctx, payload.PostID); err != nil {
		log.Printf("Error publishing PostID %d: %v", payload.PostID, err)
	}

	return nil
}
