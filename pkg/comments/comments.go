// Package comments keeps per-task discussion threads.
package comments

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/storage"
)

const (
	slotKey     = "comments"
	defaultUser = "Current User"
)

// Board holds every comment and persists them under the "comments" key.
type Board struct {
	slot     storage.Slot
	mu       sync.Mutex
	comments []model.Comment
	now      func() time.Time
}

func NewBoard(slot storage.Slot) (*Board, error) {
	b := &Board{slot: slot, now: time.Now}
	if _, err := storage.GetJSON(slot, slotKey, &b.comments); err != nil {
		return nil, err
	}
	return b, nil
}

// Add appends a comment to a task and saves the board.
func (b *Board) Add(taskID, user, content string) (model.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if strings.TrimSpace(user) == "" {
		user = defaultUser
	}
	c := model.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		User:      user,
		Content:   content,
		Timestamp: b.now(),
	}
	b.comments = append(b.comments, c)
	return c, storage.SetJSON(b.slot, slotKey, b.comments)
}

// ForTask returns the comments on a task in the order they were added.
func (b *Board) ForTask(taskID string) []model.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []model.Comment
	for _, c := range b.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out
}
