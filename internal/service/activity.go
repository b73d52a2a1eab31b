package service

import (
	"context"

	"relgraph/internal/model"
	"relgraph/internal/repository"

	"github.com/google/uuid"
)

// ActivityRecorder 记录关注/取关等动态
// 作为 after-commit 回调注册，失败不影响关系本身
func ActivityRecorder(store repository.ActivityStore) Hook {
	return func(ctx context.Context, ev Event) error {
		return store.Create(ctx, &model.Activity{
			ID:        uuid.New(),
			ActorID:   ev.ActorID,
			TargetID:  ev.TargetID,
			StatusID:  ev.Status.ID,
			Verb:      ev.Status.Verb,
			Action:    ev.Action,
			CreatedAt: ev.At,
		})
	}
}
