package command

import (
	"context"
	"errors"
	"strings"

	"github.com/park285/cheese-duel/internal/challenge"
	"github.com/park285/cheese-duel/internal/duel"
)

// challenge handles "@name [white|black|random]".
func (h *Handler) challenge(ctx context.Context, msg Message, args []string) error {
	target := sanitizeUserArg(args[0])
	if target == "" {
		return h.Presenter.Text(msg.Room, h.Formatter.Usage("errors.usage_challenge"))
	}
	color := duel.ColorRandom
	if len(args) > 1 {
		color = duel.ParseColorChoice(args[1])
	}

	ch, err := h.Challenges.Create(msg.Room, msg.UserID, msg.UserName, target, target, color)
	if errors.Is(err, challenge.ErrAlreadyPending) {
		return h.Presenter.Text(msg.Room, h.Formatter.PendingChallenge(target))
	}
	if err != nil {
		return h.fail(msg, "challenge", err)
	}
	if ch.Status != challenge.StatusAccepted {
		return h.Presenter.Text(msg.Room, h.Formatter.Challenged(ch))
	}
	return h.startChallenge(ctx, msg, ch)
}

func (h *Handler) accept(ctx context.Context, msg Message) error {
	ch, err := h.Challenges.Accept(msg.UserID, msg.Room)
	if err != nil {
		return h.fail(msg, "accept", err)
	}
	if ch.TargetName == ch.TargetID {
		ch.TargetName = msg.UserName
	}
	return h.startChallenge(ctx, msg, ch)
}

func (h *Handler) decline(msg Message) error {
	ch, err := h.Challenges.Decline(msg.UserID, msg.Room)
	if err != nil {
		return h.fail(msg, "decline", err)
	}
	return h.Presenter.Text(msg.Room, h.Formatter.Declined(ch))
}

func (h *Handler) startChallenge(ctx context.Context, msg Message, ch *challenge.Challenge) error {
	g, err := h.Duels.CreateGame(ctx, ch.Participants())
	if err != nil {
		return h.fail(msg, "create", err)
	}
	return h.start(ctx, msg, g)
}

// sanitizeUserArg strips the mention marker and surrounding punctuation.
func sanitizeUserArg(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@"))
	return strings.Trim(s, "<>,.")
}
