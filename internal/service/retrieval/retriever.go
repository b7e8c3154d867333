package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Retriever returns a textual summary of the passages matching a query.
// An empty string means nothing matched.
type Retriever interface {
	Query(ctx context.Context, text string) (string, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder embeds text with an Ollama embedding model.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

// NewOllamaEmbedder creates an embedder for model.
func NewOllamaEmbedder(client *api.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

// maxEmbedInput caps the characters sent per embedding request.
const maxEmbedInput = 2048

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbedInput {
		text = truncateRunes(text, maxEmbedInput)
	}

	resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", e.model, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embed with %s: empty vector", e.model)
	}

	vector := make([]float32, len(resp.Embedding))
	for i, val := range resp.Embedding {
		vector[i] = float32(val)
	}
	return vector, nil
}

// Dial opens an insecure gRPC connection to Qdrant.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s: %w", addr, err)
	}
	return conn, nil
}

// QdrantRetriever searches a Qdrant collection with embedded queries.
type QdrantRetriever struct {
	embedder   Embedder
	points     qdrant.PointsClient
	collection string
	topK       int
	timeout    time.Duration
}

// QdrantOptions configures a QdrantRetriever.
type QdrantOptions struct {
	Collection string
	TopK       int
	// Timeout bounds one Query; zero means no bound.
	Timeout time.Duration
}

// NewQdrantRetriever creates a retriever over points.
func NewQdrantRetriever(embedder Embedder, points qdrant.PointsClient, opts QdrantOptions) *QdrantRetriever {
	if opts.TopK < 1 {
		opts.TopK = 3
	}
	return &QdrantRetriever{
		embedder:   embedder,
		points:     points,
		collection: opts.Collection,
		topK:       opts.TopK,
		timeout:    opts.Timeout,
	}
}

func (r *QdrantRetriever) Query(ctx context.Context, text string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}

	resp, err := r.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: r.collection,
		Vector:         vector,
		Limit:          uint64(r.topK),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Include{
				Include: &qdrant.PayloadIncludeSelector{
					Fields: []string{payloadText, payloadSource},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", r.collection, err)
	}

	log.Printf("[retrieval] %d passages for query (%d chars)", len(resp.GetResult()), len(text))
	return renderPassages(resp.GetResult()), nil
}

func renderPassages(points []*qdrant.ScoredPoint) string {
	var b strings.Builder
	for _, point := range points {
		text := point.GetPayload()[payloadText].GetStringValue()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if source := point.GetPayload()[payloadSource].GetStringValue(); source != "" {
			fmt.Fprintf(&b, "# SOURCE: %s\n\n", source)
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
