package engine

import (
	"context"
	"log"

	apperrors "github.com/louisbranch/idle-rpg/internal/platform/errors"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/session"
	"github.com/louisbranch/idle-rpg/internal/services/combat/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReplayResult summarizes a reward replay.
type ReplayResult struct {
	// Replayed lists the turns whose pending steps were retried.
	Replayed []string
	// Pending counts turns still owing rewards afterwards.
	Pending int
	// Level is set when a replayed experience step levelled up combat.
	Level *int
}

func intentFor(characterID string, outcome session.Outcome) storage.RewardIntent {
	intent := storage.RewardIntent{TurnID: outcome.TurnID, CharacterID: characterID}
	if outcome.Rewards == nil {
		return intent
	}
	intent.Gold = outcome.Rewards.Gold
	intent.Experience = outcome.Rewards.Experience
	if len(outcome.Rewards.Loot) > 0 {
		drop := outcome.Rewards.Loot[0]
		intent.LootItemID = drop.ItemID
		intent.LootQuantity = drop.Quantity
	}
	return intent
}

// settle records the reward intent for a decided win and applies its steps.
// Failures are logged and left pending for ReplayRewards; the turn itself is
// already persisted.
func (e *Engine) settle(ctx context.Context, characterID string, outcome session.Outcome) int {
	intent, err := e.rewards.CreateRewardIntent(ctx, intentFor(characterID, outcome))
	if err != nil {
		log.Printf("reward intent failed turn_id=%s character_id=%s err=%v", outcome.TurnID, characterID, err)
		return leveling.NoLevelChange
	}
	return e.applyIntent(ctx, intent)
}

// applyIntent runs each pending step. The store claims and applies a step
// atomically, so a step already applied by an earlier attempt is skipped.
func (e *Engine) applyIntent(ctx context.Context, intent storage.RewardIntent) int {
	level := leveling.NoLevelChange
	for _, step := range intent.PendingSteps() {
		grant := storage.RewardGrant{TurnID: intent.TurnID, Step: step}
		gained := leveling.NoLevelChange
		if step == storage.RewardStepExperience {
			progress, next, err := e.leveling.Gain(ctx, intent.CharacterID, leveling.SkillCombat, intent.Experience)
			if err != nil {
				log.Printf("reward step failed turn_id=%s step=%s err=%v", intent.TurnID, step, err)
				continue
			}
			grant.Skill = leveling.SkillCombat
			grant.Progress = progress
			gained = next
		}
		applied, err := e.rewards.ApplyRewardStep(ctx, grant)
		if err != nil {
			log.Printf("reward step failed turn_id=%s step=%s err=%v", intent.TurnID, step, err)
			continue
		}
		if applied && gained != leveling.NoLevelChange {
			level = gained
		}
	}
	return level
}

// ReplayRewards retries every pending reward step for characterID. A won
// encounter still on the session is re-recorded first, covering a crash
// between persisting the turn and recording its intent.
func (e *Engine) ReplayRewards(ctx context.Context, characterID string) (res ReplayResult, err error) {
	ctx, span := e.tracer.Start(ctx, "combat.replay_rewards", trace.WithAttributes(
		attribute.String("combat.character_id", characterID),
	))
	defer func() {
		endSpan(span, err)
		span.End()
	}()

	if characterID == "" {
		return ReplayResult{}, errCharacterMissing
	}
	unlock := e.locks.lock(characterID)
	defer unlock()

	current, err := e.load(ctx, characterID)
	if err != nil {
		return ReplayResult{}, err
	}
	return e.replay(ctx, current)
}

func (e *Engine) replay(ctx context.Context, current session.Session) (ReplayResult, error) {
	if current.Status == session.StatusResolved && current.Outcome.Status == session.PlayerWins && current.Outcome.TurnID != "" {
		if _, err := e.rewards.CreateRewardIntent(ctx, intentFor(current.CharacterID, *current.Outcome)); err != nil {
			return ReplayResult{}, apperrors.Upstream("record reward intent", err)
		}
	}

	pending, err := e.rewards.ListPendingRewardIntents(ctx, current.CharacterID)
	if err != nil {
		return ReplayResult{}, apperrors.Upstream("list pending rewards", err)
	}
	var res ReplayResult
	for _, intent := range pending {
		res.Replayed = append(res.Replayed, intent.TurnID)
		if level := e.applyIntent(ctx, intent); level != leveling.NoLevelChange {
			res.Level = &level
		}
	}

	remaining, err := e.rewards.ListPendingRewardIntents(ctx, current.CharacterID)
	if err != nil {
		return ReplayResult{}, apperrors.Upstream("list pending rewards", err)
	}
	res.Pending = len(remaining)
	return res, nil
}
