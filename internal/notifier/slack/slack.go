package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/mauv0809/courtqueue/internal/metrics"
	"github.com/mauv0809/courtqueue/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendResultNotification(m *match.Match, dryRun bool) error {
	msg := formatResultNotification(m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func formatResultNotification(m *match.Match) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	headerText := slack.NewTextBlockObject("plain_text", "Match finished!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	where := fmt.Sprintf("%s · %s · court %s", m.Scope.Tournament, m.Scope.Place, m.Scope.Court)
	if m.Scope.Kind == match.KindGroup {
		where = m.Scope.Group
	}
	if m.Tags != nil {
		var tags []string
		for _, t := range []string{m.Tags.RoundType, m.Tags.Gender, m.Tags.MatchType} {
			if t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			where += "\n" + strings.Join(tags, " | ")
		}
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", where, false, false), nil, nil))

	resultText := "Result: no scores reported."
	if m.Score1 != nil && m.Score2 != nil {
		resultText = fmt.Sprintf("*%s* %d : %d *%s*", m.Player1, *m.Score1, *m.Score2, m.Player2)
		switch {
		case *m.Score1 > *m.Score2:
			resultText += fmt.Sprintf("\n%s won! 🏆", m.Player1)
		case *m.Score2 > *m.Score1:
			resultText += fmt.Sprintf("\n%s won! 🏆", m.Player2)
		}
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", resultText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
