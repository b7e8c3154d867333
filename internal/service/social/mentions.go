package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const mentionsPerCheck = 10

// MentionSearcher finds recent tweets.
type MentionSearcher interface {
	SearchRecent(ctx context.Context, query, sinceID string, maxResults int) ([]Tweet, error)
}

// Replier writes the text of a reply to a mention.
type Replier interface {
	Respond(ctx context.Context, message string) (string, error)
}

// Cursor remembers the last processed mention.
type Cursor interface {
	Load() (string, error)
	Save(id string) error
}

// MentionChecker polls for new mentions of the bot account.
type MentionChecker struct {
	search    MentionSearcher
	cursor    Cursor
	username  string
	replier   Replier
	publisher Publisher
}

// NewMentionChecker creates a checker for @username.
func NewMentionChecker(search MentionSearcher, cursor Cursor, username string) *MentionChecker {
	return &MentionChecker{search: search, cursor: cursor, username: username}
}

// WithReplies makes the checker answer each mention.
func (m *MentionChecker) WithReplies(replier Replier, publisher Publisher) *MentionChecker {
	m.replier = replier
	m.publisher = publisher
	return m
}

// Query is the search expression for mentions, excluding retweets.
func (m *MentionChecker) Query() string {
	return "@" + m.username + " -is:retweet"
}

// Check processes new mentions oldest first and returns how many were seen.
// The cursor advances after each mention so a failure never replays earlier ones.
func (m *MentionChecker) Check(ctx context.Context) (int, error) {
	if m.username == "" {
		return 0, errors.New("bot username not configured")
	}

	sinceID, err := m.cursor.Load()
	if err != nil {
		return 0, err
	}

	mentions, err := m.search.SearchRecent(ctx, m.Query(), sinceID, mentionsPerCheck)
	if err != nil {
		return 0, err
	}
	if len(mentions) == 0 {
		log.Printf("[social] no new mentions")
		return 0, nil
	}

	for i := len(mentions) - 1; i >= 0; i-- {
		mention := mentions[i]
		log.Printf("[social] mention %s from user %s: %s", mention.ID, mention.AuthorID, mention.Text)

		if err := m.cursor.Save(mention.ID); err != nil {
			return len(mentions) - 1 - i, err
		}

		if m.replier != nil && m.publisher != nil {
			if err := m.reply(ctx, mention); err != nil {
				log.Printf("[social] reply to %s failed: %v", mention.ID, err)
			}
		}
	}
	return len(mentions), nil
}

func (m *MentionChecker) reply(ctx context.Context, mention Tweet) error {
	text, err := m.replier.Respond(ctx, mention.Text)
	if err != nil {
		return fmt.Errorf("compose reply: %w", err)
	}
	id, err := m.publisher.CreateTweet(ctx, text, nil, mention.ID)
	if err != nil {
		return err
	}
	log.Printf("[social] replied to %s with %s", mention.ID, id)
	return nil
}

// Run checks every interval until ctx is cancelled. Check errors are logged.
func (m *MentionChecker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.Check(ctx); err != nil {
			log.Printf("[social] check mentions: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
