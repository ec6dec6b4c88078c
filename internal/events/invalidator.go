package events

import (
	"context"
	"errors"
	"log/slog"
)

// Invalidator is the slice of the permission cache the subscriber needs.
type Invalidator interface {
	InvalidateByEvent(ctx context.Context, typ Type, guildID, channelID, userID int64) error
}

// RunInvalidator subscribes to the bus and applies every incoming event to
// the cache, so replicas of the cache in other processes stay consistent
// with mutations performed elsewhere. It blocks until ctx is cancelled.
func RunInvalidator(ctx context.Context, bus Bus, inv Invalidator, logger *slog.Logger) error {
	err := bus.Subscribe(ctx, func(event Event) {
		if err := inv.InvalidateByEvent(ctx, event.Type, event.GuildID, event.ChannelID, event.UserID); err != nil {
			logger.Error("applying invalidation event",
				"event_id", event.ID, "type", event.Type, "guild_id", event.GuildID, "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
