package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadText   = "text"
	payloadSource = "source"

	// DefaultChunkSize and DefaultChunkOverlap are measured in runes.
	DefaultChunkSize    = 400
	DefaultChunkOverlap = 50

	upsertBatch = 100
)

// IndexStats summarises one indexing run.
type IndexStats struct {
	Files   int
	Chunks  int
	Points  int
	Skipped int
}

// Indexer loads a directory of texts into a Qdrant collection.
type Indexer struct {
	embedder    Embedder
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
	vectorSize  uint64
}

// NewIndexer creates an indexer writing to collection.
func NewIndexer(embedder Embedder, collections qdrant.CollectionsClient, points qdrant.PointsClient, collection string, vectorSize int) *Indexer {
	return &Indexer{
		embedder:    embedder,
		points:      points,
		collections: collections,
		collection:  collection,
		vectorSize:  uint64(vectorSize),
	}
}

// EnsureCollection creates the collection, deleting it first when recreate is set.
func (ix *Indexer) EnsureCollection(ctx context.Context, recreate bool) error {
	list, err := ix.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	exists := false
	for _, col := range list.GetCollections() {
		if col.GetName() == ix.collection {
			exists = true
			break
		}
	}

	if exists && recreate {
		log.Printf("[retrieval] deleting collection %s", ix.collection)
		if _, err := ix.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: ix.collection}); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		exists = false
	}

	if exists {
		return nil
	}

	log.Printf("[retrieval] creating collection %s (size=%d)", ix.collection, ix.vectorSize)
	_, err = ix.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     ix.vectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Index embeds every .txt and .md file under dir.
func (ix *Indexer) Index(ctx context.Context, dir string, recreate bool) (IndexStats, error) {
	var stats IndexStats

	if err := ix.EnsureCollection(ctx, recreate); err != nil {
		return stats, err
	}

	files, err := corpusFiles(dir)
	if err != nil {
		return stats, fmt.Errorf("scan %s: %w", dir, err)
	}

	batch := make([]*qdrant.PointStruct, 0, upsertBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		wait := true
		if _, err := ix.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: ix.collection,
			Wait:           &wait,
			Points:         batch,
		}); err != nil {
			return fmt.Errorf("upsert %d points: %w", len(batch), err)
		}
		stats.Points += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[retrieval] skip %s: %v", path, err)
			stats.Skipped++
			continue
		}
		stats.Files++

		source, err := filepath.Rel(dir, path)
		if err != nil {
			source = filepath.Base(path)
		}

		chunks := ChunkText(string(content), DefaultChunkSize, DefaultChunkOverlap)
		stats.Chunks += len(chunks)

		for _, chunk := range chunks {
			vector, err := ix.embedder.Embed(ctx, chunk)
			if err != nil {
				log.Printf("[retrieval] embed chunk of %s: %v", source, err)
				stats.Skipped++
				continue
			}

			batch = append(batch, newPoint(chunk, source, vector))
			if len(batch) >= upsertBatch {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	log.Printf("[retrieval] indexed %d chunks from %d files into %s", stats.Points, stats.Files, ix.collection)
	return stats, nil
}

func newPoint(chunk, source string, vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id: &qdrant.PointId{
			PointIdOptions: &qdrant.PointId_Uuid{Uuid: uuid.NewString()},
		},
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{
				Vector: &qdrant.Vector{Data: vector},
			},
		},
		Payload: map[string]*qdrant.Value{
			payloadText:   {Kind: &qdrant.Value_StringValue{StringValue: chunk}},
			payloadSource: {Kind: &qdrant.Value_StringValue{StringValue: source}},
		},
	}
}

func corpusFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ChunkText splits text into rune windows of size chunkSize that overlap by overlap runes.
func ChunkText(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	chunks := make([]string, 0, len(runes)/(chunkSize-overlap)+1)
	for start := 0; start < len(runes); start += chunkSize - overlap {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
