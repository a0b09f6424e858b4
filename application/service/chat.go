package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/domain/repository"
)

// Chat orchestrates a single question/answer turn: classify the intent,
// assemble context for it, and generate the answer through the active
// provider.
type Chat struct {
	providers   *ProviderManager
	router      *IntentRouter
	embedder    rag.Embedder
	store       rag.VectorStore
	personal    chat.PersonalContextBuilder
	searchLimit int
	logger      *slog.Logger
}

// NewChat creates a Chat service. The personal context builder may be
// nil, in which case personal intents answer without personal facts.
func NewChat(
	providers *ProviderManager,
	router *IntentRouter,
	embedder rag.Embedder,
	store rag.VectorStore,
	personal chat.PersonalContextBuilder,
	searchLimit int,
	logger *slog.Logger,
) *Chat {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{
		providers:   providers,
		router:      router,
		embedder:    embedder,
		store:       store,
		personal:    personal,
		searchLimit: searchLimit,
		logger:      logger,
	}
}

// Ask answers one question scoped to a convention. Classification
// failures default to the Unknown intent inside the router; everything
// downstream of classification (context assembly, provider resolution,
// generation) propagates errors to the caller.
func (c *Chat) Ask(
	ctx context.Context,
	conventionID int64,
	user chat.UserContext,
	question string,
	history []chat.Message,
) (chat.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return chat.Answer{}, fmt.Errorf("empty question")
	}

	intent := c.router.Classify(ctx, question, history)
	contextText, err := c.buildContext(ctx, conventionID, user, question, intent)
	if err != nil {
		return chat.Answer{}, err
	}

	provider, err := c.providers.GetActiveProvider(ctx)
	if err != nil {
		return chat.Answer{}, err
	}

	req := chat.NewGenerateRequest(question, contextText, c.router.SystemInstruction(intent), history)
	text, err := provider.GenerateResponse(ctx, req)
	if err != nil {
		return chat.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	c.logger.Debug("answered question",
		"convention_id", conventionID,
		"intent", string(intent),
		"provider", provider.Name(),
		"context_bytes", len(contextText),
	)
	return chat.NewAnswer(text, provider.Name(), intent), nil
}

// buildContext assembles the grounding context for an intent. Personal
// intents never touch the vector store; retrieval intents never touch
// personal data.
func (c *Chat) buildContext(ctx context.Context, conventionID int64, user chat.UserContext, question string, intent chat.Intent) (string, error) {
	switch {
	case intent.IsPersonal():
		return c.personalContext(ctx, user, intent)
	case intent.UsesRetrieval():
		return c.retrievalContext(ctx, conventionID, question)
	default:
		return "", nil
	}
}

func (c *Chat) personalContext(ctx context.Context, user chat.UserContext, intent chat.Intent) (string, error) {
	if c.personal == nil || !user.HasSubject() {
		return "", nil
	}

	personalCtx, err := c.personal.BuildPersonalContext(ctx, user, intent)
	if err != nil {
		return "", fmt.Errorf("build personal context: %w", err)
	}
	return personalCtx, nil
}

func (c *Chat) retrievalContext(ctx context.Context, conventionID int64, question string) (string, error) {
	embedding, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results, err := c.store.Search(ctx, embedding, c.searchLimit,
		repository.WithConventionID(conventionID))
	if err != nil {
		return "", fmt.Errorf("search context: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, result := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, result.Content())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
