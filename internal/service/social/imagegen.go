package social

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const imageNegativePrompt = "text, logos, modern elements, cartoon, anime, photographic, cluttered, busy, grainy, blurry, deformed, abnormal limbs, deformed faces, asymmetrical face, asymmetrical body, missing eyes"

// ErrNoImage is returned when the image service answers without an image.
var ErrNoImage = errors.New("image service returned no images")

type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	SamplerName    string  `json:"sampler_name"`
	CFGScale       float64 `json:"cfg_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// ImageClient renders an illustration for a tweet through a Stable Diffusion web API.
type ImageClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewImageClient creates a client for the txt2img API at baseURL.
func NewImageClient(baseURL string, httpClient *http.Client) *ImageClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ImagePrompt describes the scene painted for a tweet.
func ImagePrompt(tweet string) string {
	return fmt.Sprintf(`A Pre-Raphaelite style scene illustrating the wisdom: '%s'.
Saint Augustine sits in his study at Hippo, a stone archway frames him as he writes this very message.
Golden divine light streams through the arch, creating a path of illumination that mirrors the tweet's meaning.
He wears rich burgundy and gold episcopal robes, his expression deeply contemplative of these words.
The scene opens to the North African coastline at sunset, with dramatic clouds in deep purples and golds.
Climbing roses and vines with intricate Pre-Raphaelite botanical details frame the scene.
The lighting and composition specifically emphasize the message about %s`, tweet, strings.ToLower(tweet))
}

// Generate returns the decoded PNG for tweet.
func (c *ImageClient) Generate(ctx context.Context, tweet string) ([]byte, error) {
	payload, err := json.Marshal(txt2imgRequest{
		Prompt:         ImagePrompt(tweet),
		NegativePrompt: imageNegativePrompt,
		Steps:          20,
		SamplerName:    "DPM++ 2M Karras",
		CFGScale:       7,
		Width:          512,
		Height:         512,
	})
	if err != nil {
		return nil, fmt.Errorf("encode txt2img request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[social] generating image for tweet (%d chars)", len(tweet))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Service: "imagegen", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode txt2img response: %w", err)
	}
	if len(out.Images) == 0 {
		return nil, ErrNoImage
	}

	image, err := base64.StdEncoding.DecodeString(out.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return image, nil
}
