package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/convention"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/domain/repository"
)

// fakeProvider is a scripted chat.Provider that records its calls.
type fakeProvider struct {
	name          string
	label         string
	labelErr      error
	response      string
	responseErr   error
	mu            sync.Mutex
	classifyCalls int
	generateCalls int
	lastRequest   chat.GenerateRequest
	closed        bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) GenerateResponse(_ context.Context, req chat.GenerateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generateCalls++
	p.lastRequest = req
	return p.response, p.responseErr
}

func (p *fakeProvider) ClassifyIntent(context.Context, string, []chat.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classifyCalls++
	return p.label, p.labelErr
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// fakeFactory builds fakeProviders and counts constructions.
type fakeFactory struct {
	mu       sync.Mutex
	builds   int
	buildErr error
	label    string
	response string
}

func (f *fakeFactory) Build(setting rag.ProviderSetting) (chat.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	f.builds++
	return &fakeProvider{name: setting.ProviderName(), label: f.label, response: f.response}, nil
}

func (f *fakeFactory) Default() chat.Provider {
	return &fakeProvider{name: "default", label: f.label, response: f.response}
}

func (f *fakeFactory) buildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

// fakeSettingStore is an in-memory rag.SettingStore.
type fakeSettingStore struct {
	mu       sync.Mutex
	nextID   int64
	settings map[int64]rag.ProviderSetting
}

func newFakeSettingStore() *fakeSettingStore {
	return &fakeSettingStore{settings: make(map[int64]rag.ProviderSetting)}
}

var errSettingNotFound = errors.New("setting not found")

func (s *fakeSettingStore) Create(_ context.Context, params rag.SettingParams) (rag.ProviderSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	setting := rag.NewProviderSetting(s.nextID, params.ProviderName, params.APIKey,
		params.BaseURL, params.ModelName, false, params.AdditionalSettings, now, now)
	s.settings[s.nextID] = setting
	return setting, nil
}

func (s *fakeSettingStore) Update(_ context.Context, id int64, params rag.SettingParams) (rag.ProviderSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.settings[id]
	if !ok {
		return rag.ProviderSetting{}, errSettingNotFound
	}
	updated := rag.NewProviderSetting(id, params.ProviderName, params.APIKey,
		params.BaseURL, params.ModelName, existing.IsActive(), params.AdditionalSettings,
		existing.CreatedAt(), time.Now().UTC().Add(time.Millisecond))
	s.settings[id] = updated
	return updated, nil
}

func (s *fakeSettingStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.settings[id]
	delete(s.settings, id)
	return ok, nil
}

func (s *fakeSettingStore) Get(_ context.Context, id int64) (rag.ProviderSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting, ok := s.settings[id]
	if !ok {
		return rag.ProviderSetting{}, errSettingNotFound
	}
	return setting, nil
}

func (s *fakeSettingStore) List(context.Context) ([]rag.ProviderSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := make([]rag.ProviderSetting, 0, len(s.settings))
	for _, setting := range s.settings {
		settings = append(settings, setting)
	}
	return settings, nil
}

func (s *fakeSettingStore) Active(context.Context) (rag.ProviderSetting, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, setting := range s.settings {
		if setting.IsActive() {
			return setting, true, nil
		}
	}
	return rag.ProviderSetting{}, false, nil
}

func (s *fakeSettingStore) Activate(_ context.Context, id int64) (rag.ProviderSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.settings[id]
	if !ok {
		return rag.ProviderSetting{}, errSettingNotFound
	}
	for otherID, setting := range s.settings {
		if setting.IsActive() {
			s.settings[otherID] = withActive(setting, false)
		}
	}
	activated := withActive(target, true)
	s.settings[id] = activated
	return activated, nil
}

func withActive(s rag.ProviderSetting, active bool) rag.ProviderSetting {
	return rag.NewProviderSetting(s.ID(), s.ProviderName(), s.APIKey(), s.BaseURL(),
		s.ModelName(), active, s.AdditionalSettings(), s.CreatedAt(), time.Now().UTC().Add(time.Millisecond))
}

// fakeEmbedder returns a constant vector and counts calls.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	vector []float64
	err    error
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.vector == nil {
		return []float64{1, 0}, nil
	}
	return e.vector, nil
}

func (e *fakeEmbedder) Dimensions() int { return 2 }

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fakeVectorStore is an in-memory rag.VectorStore sufficient for
// orchestration tests.
type fakeVectorStore struct {
	mu          sync.Mutex
	docs        map[string]rag.IndexedDocument
	nextID      int
	searchCalls int
	results     []rag.SearchResult
	searchErr   error
	addErr      error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{docs: make(map[string]rag.IndexedDocument)}
}

func (s *fakeVectorStore) AddDocument(_ context.Context, content string, embedding []float64, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	s.docs[id] = rag.NewIndexedDocument(content, embedding, metadata)
	return id, nil
}

func (s *fakeVectorStore) AddDocuments(ctx context.Context, docs []rag.IndexedDocument) (int, error) {
	if s.addErr != nil {
		return 0, s.addErr
	}
	for _, doc := range docs {
		if _, err := s.AddDocument(ctx, doc.Content(), doc.Embedding(), doc.Metadata()); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

func (s *fakeVectorStore) Search(context.Context, []float64, int, ...repository.Option) ([]rag.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *fakeVectorStore) DeleteDocument(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok, nil
}

func (s *fakeVectorStore) DeleteDocumentsByMetadata(_ context.Context, key string, value any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, doc := range s.docs {
		if stored, ok := doc.Metadata()[key]; ok && fmt.Sprint(stored) == fmt.Sprint(value) {
			delete(s.docs, id)
			removed++
		}
	}
	return removed, nil
}

func (s *fakeVectorStore) DeleteDocumentsByConvention(ctx context.Context, conventionID int64) (int64, error) {
	return s.DeleteDocumentsByMetadata(ctx, rag.MetaConventionID, conventionID)
}

func (s *fakeVectorStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

func (s *fakeVectorStore) CountConvention(_ context.Context, conventionID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, doc := range s.docs {
		if fmt.Sprint(doc.Metadata()[rag.MetaConventionID]) == fmt.Sprint(conventionID) {
			count++
		}
	}
	return count, nil
}

func (s *fakeVectorStore) searchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchCalls
}

// fakeDataSource serves scripted bundles per convention.
type fakeDataSource struct {
	ids        []int64
	idsErr     error
	bundles    map[int64]convention.Bundle
	bundleErrs map[int64]error
}

func (s *fakeDataSource) ActiveConventionIDs(context.Context) ([]int64, error) {
	return s.ids, s.idsErr
}

func (s *fakeDataSource) Bundle(_ context.Context, conventionID int64) (convention.Bundle, error) {
	if err := s.bundleErrs[conventionID]; err != nil {
		return convention.Bundle{}, err
	}
	bundle, ok := s.bundles[conventionID]
	if !ok {
		return convention.Bundle{}, fmt.Errorf("no bundle for convention %d", conventionID)
	}
	return bundle, nil
}

// fakePersonalBuilder returns a scripted personal context.
type fakePersonalBuilder struct {
	context string
	err     error
	calls   int
}

func (b *fakePersonalBuilder) BuildPersonalContext(context.Context, chat.UserContext, chat.Intent) (string, error) {
	b.calls++
	return b.context, b.err
}
