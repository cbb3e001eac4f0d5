package workflows

import (
	"context"
	"fmt"

	"github.com/flintapp/flint/internal/core/ports"
)

// Activities holds the side-effecting steps of the match workflows.
type Activities struct {
	Profiles ports.ProfileRepository
	Matches  ports.MatchRepository
	Notifier ports.NotificationService
}

// MatchPair carries the display names of both members.
type MatchPair struct {
	NameA string `json:"name_a"`
	NameB string `json:"name_b"`
}

// NotifyInput names the recipient and the person they matched with.
type NotifyInput struct {
	ProfileID   string `json:"profile_id"`
	Counterpart string `json:"counterpart"`
}

// FetchMatchPair loads both profiles and returns their display names.
func (a *Activities) FetchMatchPair(ctx context.Context, input MatchNotificationInput) (MatchPair, error) {
	profiles, err := a.Profiles.GetByIDs(ctx, []string{input.ProfileA, input.ProfileB})
	if err != nil {
		return MatchPair{}, fmt.Errorf("fetch profiles: %w", err)
	}
	var pair MatchPair
	for _, p := range profiles {
		switch p.ID {
		case input.ProfileA:
			pair.NameA = p.DisplayName
		case input.ProfileB:
			pair.NameB = p.DisplayName
		}
	}
	if pair.NameA == "" || pair.NameB == "" {
		return MatchPair{}, fmt.Errorf("match %s: one or both profiles missing", input.MatchID)
	}
	return pair, nil
}

// NotifyProfile sends the push notification to one member.
func (a *Activities) NotifyProfile(ctx context.Context, input NotifyInput) error {
	title := "It's a match!"
	body := fmt.Sprintf("You and %s liked each other.", input.Counterpart)
	return a.Notifier.SendPush(ctx, input.ProfileID, title, body)
}

// RetractNotification is the compensation for NotifyProfile. Push
// notifications cannot be unsent, so this sends a follow-up telling the
// recipient the match is not ready yet.
func (a *Activities) RetractNotification(ctx context.Context, profileID string) error {
	return a.Notifier.SendPush(ctx, profileID, "Hold on", "We hit a snag delivering your match. We'll retry shortly.")
}

// MarkNotified records successful delivery on the match row.
func (a *Activities) MarkNotified(ctx context.Context, matchID string) error {
	return a.Matches.MarkNotified(ctx, matchID, true)
}
