// Package app assembles the services shared by the API server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/augustine-bot/augustine/backend/internal/config"
	"github.com/augustine-bot/augustine/backend/internal/model/persona"
	"github.com/augustine-bot/augustine/backend/internal/service/ai"
	"github.com/augustine-bot/augustine/backend/internal/service/chat"
	"github.com/augustine-bot/augustine/backend/internal/service/retrieval"
	"github.com/augustine-bot/augustine/backend/internal/service/social"
	"github.com/augustine-bot/augustine/backend/internal/service/tweet"
	"github.com/augustine-bot/augustine/backend/internal/store"
)

// ErrRetrievalDisabled is returned when QDRANT_HOST is not configured.
var ErrRetrievalDisabled = errors.New("retrieval disabled: set QDRANT_HOST")

// App holds constructed collaborators.
type App struct {
	Config    *config.Config
	Store     store.Store
	Personas  persona.Store
	Providers *ai.Providers
	Chat      *chat.Service
	Tweets    *tweet.Service

	qdrant *grpc.ClientConn
}

// New builds every collaborator from cfg. Missing optional backends are logged
// and surface as errors when first used.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	providers, err := ai.NewProvidersFromConfig(ctx, cfg.AI)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Store:     st,
		Personas:  persona.NewMemoryStore(persona.Seed()),
		Providers: providers,
	}

	var retriever retrieval.Retriever
	if cfg.Retrieval.Enabled() {
		conn, err := retrieval.Dial(cfg.Retrieval.Addr())
		if err != nil {
			st.Close()
			return nil, err
		}
		a.qdrant = conn
		retriever = retrieval.NewQdrantRetriever(
			retrieval.NewOllamaEmbedder(providers.Ollama, cfg.Retrieval.EmbedModel),
			qdrant.NewPointsClient(conn),
			retrieval.QdrantOptions{
				Collection: cfg.Retrieval.Collection,
				TopK:       cfg.Retrieval.TopK,
				Timeout:    cfg.Retrieval.Timeout,
			},
		)
		log.Printf("[app] retrieval enabled: qdrant=%s collection=%s", cfg.Retrieval.Addr(), cfg.Retrieval.Collection)
	} else {
		log.Println("[app] QDRANT_HOST not set, retrieval context will degrade to an apology")
	}

	a.Chat = chat.NewService(st, a.Personas, ai.NewPersonaPromptManager(), chat.NewAssembler(retriever), providers.Chat)
	a.Tweets = tweet.NewService(providers.Tweet, cfg.Tweet.PromptsPath)
	return a, nil
}

// OpenStore returns the configured store, migrating it when requested.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if !cfg.Persistent() {
		log.Println("[store] using in-memory chat history")
		return store.NewMemoryStore(), nil
	}

	st, err := store.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	log.Printf("[store] using %s chat history", cfg.Driver)
	return st, nil
}

// Indexer returns a corpus indexer bound to the configured collection.
func (a *App) Indexer() (*retrieval.Indexer, error) {
	if a.qdrant == nil {
		return nil, ErrRetrievalDisabled
	}
	return retrieval.NewIndexer(
		retrieval.NewOllamaEmbedder(a.Providers.Ollama, a.Config.Retrieval.EmbedModel),
		qdrant.NewCollectionsClient(a.qdrant),
		qdrant.NewPointsClient(a.qdrant),
		a.Config.Retrieval.Collection,
		a.Config.Retrieval.VectorSize,
	), nil
}

// Twitter returns a client using the configured credentials.
func (a *App) Twitter() *social.TwitterClient {
	c := a.Config.Social
	return social.NewTwitterClient(social.TwitterConfig{
		APIKey:       c.APIKey,
		APISecret:    c.APISecret,
		AccessToken:  c.AccessToken,
		AccessSecret: c.AccessSecret,
		BearerToken:  c.BearerToken,
	})
}

// Poster returns the illustrated wisdom posting pipeline.
func (a *App) Poster() (*social.Poster, error) {
	if !a.Config.Social.Enabled() {
		return nil, social.ErrMissingCredentials
	}
	return social.NewPoster(a.Tweets, social.NewImageClient(a.Config.Social.ImageGenURL, nil), a.Twitter()), nil
}

// MentionChecker returns a checker for the bot account, replying when reply is set.
func (a *App) MentionChecker(reply bool) (*social.MentionChecker, error) {
	c := a.Config.Social
	if c.BotUsername == "" {
		return nil, fmt.Errorf("TWITTER_BOT_USERNAME is required")
	}

	client := a.Twitter()
	checker := social.NewMentionChecker(client, social.NewFileCursor(c.LastSeenFile), c.BotUsername)
	if reply {
		if !c.Enabled() {
			return nil, social.ErrMissingCredentials
		}
		checker.WithReplies(a.Tweets, client)
	}
	return checker, nil
}

// Close releases the store and the Qdrant connection.
func (a *App) Close() error {
	var errs []error
	if a.qdrant != nil {
		errs = append(errs, a.qdrant.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
