package service

import (
	"context"
	"log/slog"

	"github.com/confluxhq/conflux/domain/chat"
)

// System instructions handed to the provider per intent. Personal
// intents must answer strictly from the supplied facts; retrieval
// intents must refuse when the context does not cover the question.
const (
	personalInstruction = "Answer strictly from the user facts supplied in the context. " +
		"Do not guess or invent details about the user. If the context does not contain " +
		"the requested fact, say you do not have that information. Answer in the " +
		"language the user writes in."

	retrievalInstruction = "Answer using only the supplied context about this convention. " +
		"If the context does not contain the answer, say you do not know rather than " +
		"guessing. Answer in the language the user writes in."

	generalInstruction = "You are a friendly assistant for a convention management " +
		"service. Answer in the language the user writes in. Be concise."
)

// IntentRouter classifies questions into answering strategies. Every
// failure mode degrades to IntentUnknown so a broken classifier never
// breaks chat.
type IntentRouter struct {
	providers *ProviderManager
	logger    *slog.Logger
}

// NewIntentRouter creates an IntentRouter.
func NewIntentRouter(providers *ProviderManager, logger *slog.Logger) *IntentRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentRouter{providers: providers, logger: logger}
}

// Classify returns the intent for a question. Provider resolution
// failures, transport failures, and unparseable labels all yield
// IntentUnknown.
func (r *IntentRouter) Classify(ctx context.Context, question string, history []chat.Message) chat.Intent {
	provider, err := r.providers.GetActiveProvider(ctx)
	if err != nil {
		r.logger.Warn("intent classification unavailable, degrading to unknown", "error", err)
		return chat.IntentUnknown
	}

	label, err := provider.ClassifyIntent(ctx, question, history)
	if err != nil {
		r.logger.Warn("intent classification failed, degrading to unknown", "error", err)
		return chat.IntentUnknown
	}

	intent, ok := chat.ParseIntent(label)
	if !ok {
		r.logger.Debug("unparseable intent label, degrading to unknown", "label", label)
		return chat.IntentUnknown
	}
	return intent
}

// SystemInstruction returns the generation instruction for an intent.
func (r *IntentRouter) SystemInstruction(intent chat.Intent) string {
	switch {
	case intent.IsPersonal():
		return personalInstruction
	case intent.UsesRetrieval():
		return retrievalInstruction
	default:
		return generalInstruction
	}
}
