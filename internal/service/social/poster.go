package social

import (
	"context"
	"fmt"
	"log"
)

// WisdomSource produces the text of a scheduled post.
type WisdomSource interface {
	WiseTweet(ctx context.Context) (string, error)
}

// ImageGenerator renders an image for a tweet.
type ImageGenerator interface {
	Generate(ctx context.Context, tweet string) ([]byte, error)
}

// Publisher posts tweets on behalf of the bot.
type Publisher interface {
	UploadMedia(ctx context.Context, image []byte) (string, error)
	CreateTweet(ctx context.Context, text string, mediaIDs []string, replyTo string) (string, error)
}

// PostResult describes a published tweet.
type PostResult struct {
	TweetID string `json:"tweet_id"`
	Text    string `json:"text"`
}

// Poster publishes an illustrated wisdom tweet.
type Poster struct {
	wisdom    WisdomSource
	images    ImageGenerator
	publisher Publisher
}

// NewPoster wires the posting pipeline.
func NewPoster(wisdom WisdomSource, images ImageGenerator, publisher Publisher) *Poster {
	return &Poster{wisdom: wisdom, images: images, publisher: publisher}
}

// Post generates wisdom, illustrates it and publishes both. A failed image aborts the post.
func (p *Poster) Post(ctx context.Context) (PostResult, error) {
	text, err := p.wisdom.WiseTweet(ctx)
	if err != nil {
		return PostResult{}, fmt.Errorf("generate wisdom: %w", err)
	}
	log.Printf("[social] generated wisdom: %s", text)

	image, err := p.images.Generate(ctx, text)
	if err != nil {
		return PostResult{}, fmt.Errorf("generate image: %w", err)
	}

	mediaID, err := p.publisher.UploadMedia(ctx, image)
	if err != nil {
		return PostResult{}, err
	}

	tweetID, err := p.publisher.CreateTweet(ctx, text, []string{mediaID}, "")
	if err != nil {
		return PostResult{}, err
	}

	log.Printf("[social] posted tweet %s", tweetID)
	return PostResult{TweetID: tweetID, Text: text}, nil
}
