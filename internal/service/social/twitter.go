// Package social posts generated content to Twitter and watches for mentions.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dghubble/oauth1"
)

const (
	DefaultAPIBaseURL    = "https://api.twitter.com"
	DefaultUploadBaseURL = "https://upload.twitter.com"
)

// ErrMissingCredentials is returned for calls that need credentials that were not configured.
var ErrMissingCredentials = errors.New("twitter credentials not configured")

// APIError is a non-2xx answer from a remote API.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error %d: %s", e.Service, e.StatusCode, strings.TrimSpace(e.Body))
}

// TwitterConfig holds credentials and endpoints for TwitterClient.
type TwitterConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
	BearerToken  string

	APIBaseURL    string
	UploadBaseURL string
	// HTTPClient is the transport under OAuth1 signing and bearer calls.
	HTTPClient *http.Client
}

// Tweet is a tweet returned by search.
type Tweet struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// TwitterClient calls the v1.1 and v2 Twitter APIs.
type TwitterClient struct {
	user       *http.Client
	app        *http.Client
	bearer     string
	apiBase    string
	uploadBase string
}

// NewTwitterClient creates a client. User-context calls are OAuth1 signed;
// search uses the bearer token.
func NewTwitterClient(cfg TwitterConfig) *TwitterClient {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	c := &TwitterClient{
		app:        base,
		bearer:     cfg.BearerToken,
		apiBase:    strings.TrimRight(orDefault(cfg.APIBaseURL, DefaultAPIBaseURL), "/"),
		uploadBase: strings.TrimRight(orDefault(cfg.UploadBaseURL, DefaultUploadBaseURL), "/"),
	}

	if cfg.APIKey != "" && cfg.AccessToken != "" {
		oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
		token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
		ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
		c.user = oauthCfg.Client(ctx, token)
	}
	return c
}

// UploadMedia uploads an image and returns its media id.
func (c *TwitterClient) UploadMedia(ctx context.Context, image []byte) (string, error) {
	if c.user == nil {
		return "", ErrMissingCredentials
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("media", "augustine_tweet_image.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadBase+"/1.1/media/upload.json", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := c.do(c.user, req, &out); err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	return out.MediaIDString, nil
}

type createTweetRequest struct {
	Text  string `json:"text"`
	Media *struct {
		MediaIDs []string `json:"media_ids"`
	} `json:"media,omitempty"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

// CreateTweet posts text with optional media and an optional reply target. Returns the new tweet id.
func (c *TwitterClient) CreateTweet(ctx context.Context, text string, mediaIDs []string, replyTo string) (string, error) {
	if c.user == nil {
		return "", ErrMissingCredentials
	}

	payload := createTweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		payload.Media = &struct {
			MediaIDs []string `json:"media_ids"`
		}{MediaIDs: mediaIDs}
	}
	if replyTo != "" {
		payload.Reply = &struct {
			InReplyToTweetID string `json:"in_reply_to_tweet_id"`
		}{InReplyToTweetID: replyTo}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/2/tweets", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(c.user, req, &out); err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	return out.Data.ID, nil
}

// Like favourites tweetID on behalf of the bot account.
func (c *TwitterClient) Like(ctx context.Context, tweetID string) error {
	if c.user == nil {
		return ErrMissingCredentials
	}

	form := url.Values{"id": {tweetID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/1.1/favorites/create.json", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.do(c.user, req, nil); err != nil {
		return fmt.Errorf("like tweet %s: %w", tweetID, err)
	}
	return nil
}

// SearchRecent returns tweets matching query newer than sinceID, newest first.
func (c *TwitterClient) SearchRecent(ctx context.Context, query, sinceID string, maxResults int) ([]Tweet, error) {
	if c.bearer == "" {
		return nil, ErrMissingCredentials
	}

	params := url.Values{
		"query":        {query},
		"tweet.fields": {"author_id,created_at"},
		"max_results":  {strconv.Itoa(maxResults)},
	}
	if sinceID != "" {
		params.Set("since_id", sinceID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	var out struct {
		Data []Tweet `json:"data"`
	}
	if err := c.do(c.app, req, &out); err != nil {
		return nil, fmt.Errorf("search mentions: %w", err)
	}
	return out.Data, nil
}

func (c *TwitterClient) do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Service: "twitter", StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
