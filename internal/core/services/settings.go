package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDocumentsDir    = "documents.dir"
	KeyChunkSize       = "chunking.size"
	KeyChunkOverlap    = "chunking.overlap"
	KeyMaxResults      = "search.max_results"
	KeyEmbedProvider   = "embedding.provider"
	KeyEmbedModel      = "embedding.model"
	KeyEmbedBaseURL    = "embedding.base_url"
	KeyEmbedAPIKey     = "embedding.api_key"
	KeyEmbedRateLimit  = "embedding.requests_per_second"
	KeyLLMProvider     = "llm.provider"
	KeyLLMModel        = "llm.model"
	KeyLLMBaseURL      = "llm.base_url"
	KeyLLMAPIKey       = "llm.api_key"
	KeyStoreBackend    = "store.backend"
	KeyStorePath       = "store.path"
	KeyStoreURL        = "store.url"
	KeyStoreCollection = "store.collection"
	KeyServerHost      = "server.host"
	KeyServerPort      = "server.port"
)

// openAIAPIKeyEnv fills an empty OpenAI API key.
const openAIAPIKeyEnv = "OPENAI_API_KEY"

// SettingKeys lists every key accepted by Set, in display order.
var SettingKeys = []string{
	KeyDocumentsDir,
	KeyChunkSize,
	KeyChunkOverlap,
	KeyMaxResults,
	KeyEmbedProvider,
	KeyEmbedModel,
	KeyEmbedBaseURL,
	KeyEmbedAPIKey,
	KeyEmbedRateLimit,
	KeyLLMProvider,
	KeyLLMModel,
	KeyLLMBaseURL,
	KeyLLMAPIKey,
	KeyStoreBackend,
	KeyStorePath,
	KeyStoreURL,
	KeyStoreCollection,
	KeyServerHost,
	KeyServerPort,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults. For the openai provider an empty API key is
// filled from OPENAI_API_KEY.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DocumentsDir: s.getString(KeyDocumentsDir, defaults.DocumentsDir),
		MaxResults:   s.getPositiveInt(KeyMaxResults, defaults.MaxResults),
		Chunking: domain.ChunkingSettings{
			Size:    s.getPositiveInt(KeyChunkSize, defaults.Chunking.Size),
			Overlap: s.getOverlap(defaults.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider, domain.AllEmbeddingProviders()),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			RequestsPerSecond: max(0, s.configStore.GetFloat(KeyEmbedRateLimit)),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(KeyLLMProvider, defaults.LLM.Provider, domain.AllLLMProviders()),
			BaseURL:  s.configStore.GetString(KeyLLMBaseURL),
			APIKey:   s.configStore.GetString(KeyLLMAPIKey),
		},
		Store: domain.StoreSettings{
			Backend:    s.getBackend(defaults.Store.Backend),
			Path:       s.getString(KeyStorePath, defaults.Store.Path),
			URL:        s.getString(KeyStoreURL, defaults.Store.URL),
			Collection: s.getString(KeyStoreCollection, defaults.Store.Collection),
		},
		Server: domain.ServerSettings{
			Host: s.getString(KeyServerHost, defaults.Server.Host),
			Port: s.getPort(defaults.Server.Port),
		},
	}

	settings.Embedding.Model = s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(KeyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if key := s.getenv(openAIAPIKeyEnv); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}

	return settings, nil
}

// Set validates value for key, stores it and saves the configuration.
// Changing a provider resets its model to that provider's default.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	stored, err := s.parse(key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	switch key {
	case KeyEmbedProvider:
		if err := s.configStore.Set(KeyEmbedModel, domain.DefaultEmbeddingModels()[domain.AIProvider(value)]); err != nil {
			return fmt.Errorf("set %s: %w", KeyEmbedModel, err)
		}
	case KeyLLMProvider:
		if err := s.configStore.Set(KeyLLMModel, domain.DefaultLLMModels()[domain.AIProvider(value)]); err != nil {
			return fmt.Errorf("set %s: %w", KeyLLMModel, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

//nolint:gocyclo // One case per setting key.
func (s *SettingsService) parse(key, value string) (any, error) {
	switch key {
	case KeyDocumentsDir, KeyStorePath, KeyStoreCollection, KeyServerHost:
		if value == "" {
			return nil, fmt.Errorf("%w: value must not be empty", domain.ErrInvalidInput)
		}
		return value, nil

	case KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey, KeyLLMModel, KeyLLMBaseURL, KeyLLMAPIKey, KeyStoreURL:
		return value, nil

	case KeyChunkSize, KeyMaxResults:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q is not a positive integer", domain.ErrInvalidInput, value)
		}
		if key == KeyChunkSize {
			if overlap := s.getOverlap(domain.DefaultAppSettings().Chunking.Overlap); overlap >= n {
				return nil, fmt.Errorf("%w: size %d must exceed overlap %d", domain.ErrInvalidInput, n, overlap)
			}
		}
		return n, nil

	case KeyChunkOverlap:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q is not a non-negative integer", domain.ErrInvalidInput, value)
		}
		size := s.getPositiveInt(KeyChunkSize, domain.DefaultAppSettings().Chunking.Size)
		if n >= size {
			return nil, fmt.Errorf("%w: overlap %d must be less than size %d", domain.ErrInvalidInput, n, size)
		}
		return n, nil

	case KeyEmbedRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%w: %q is not a non-negative number", domain.ErrInvalidInput, value)
		}
		return f, nil

	case KeyServerPort:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%w: %q is not a valid port", domain.ErrInvalidInput, value)
		}
		return n, nil

	case KeyEmbedProvider:
		if !slices.Contains(domain.AllEmbeddingProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("%w: provider %q does not support embeddings", domain.ErrUnsupportedType, value)
		}
		return value, nil

	case KeyLLMProvider:
		if value != "" && !slices.Contains(domain.AllLLMProviders(), domain.AIProvider(value)) {
			return nil, fmt.Errorf("%w: provider %q does not support answer generation", domain.ErrUnsupportedType, value)
		}
		return value, nil

	case KeyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, value)
		}
		return value, nil

	default:
		return nil, fmt.Errorf("%w: unknown setting", domain.ErrInvalidInput)
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getPositiveInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getOverlap(defaultVal int) int {
	if _, ok := s.configStore.Get(KeyChunkOverlap); ok {
		if val := s.configStore.GetInt(KeyChunkOverlap); val >= 0 {
			return val
		}
	}
	return defaultVal
}

func (s *SettingsService) getPort(defaultVal int) int {
	if val := s.configStore.GetInt(KeyServerPort); val > 0 && val <= 65535 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider, allowed []domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if slices.Contains(allowed, provider) {
		return provider
	}
	return defaultVal
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(KeyStoreBackend))
	if backend.IsValid() {
		return backend
	}
	return defaultVal
}
