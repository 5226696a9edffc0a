package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"portfoliorag/internal/domain"
)

// OwnerConfig holds the site owner facts used in generated prose.
type OwnerConfig struct {
	Name      string `yaml:"name"`
	Location  string `yaml:"location"`
	Headline  string `yaml:"headline"`
	ResumeURL string `yaml:"resume_url"`
}

// SourcesConfig locates the site's content files. Relative paths are
// resolved against Root.
type SourcesConfig struct {
	Root     string `yaml:"root"`
	Home     string `yaml:"home"`
	Privacy  string `yaml:"privacy"`
	Projects string `yaml:"projects"`
	Career   string `yaml:"career"`
	Socials  string `yaml:"socials"`
	Routes   string `yaml:"routes"`
	Resume   string `yaml:"resume"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type string `yaml:"type"`
	// Model is provider specific; empty picks the provider default.
	Model string `yaml:"model"`
	// Dimension pins the vector length. Zero pins it from the first vector.
	Dimension         int    `yaml:"dimension"`
	BaseURL           string `yaml:"base_url,omitempty"`
	APIKeyEnv         string `yaml:"api_key_env,omitempty"`
	TimeoutSecs       int    `yaml:"timeout_secs"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	MaxRetries        int    `yaml:"max_retries"`
	CacheDir          string `yaml:"cache_dir,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant corpus store.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty"`
	Collection string `yaml:"collection"`
	UseTLS     bool   `yaml:"use_tls"`
}

// CorpusConfig selects where the embedded corpus is persisted.
type CorpusConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RecencyConfig is one recency override pass.
type RecencyConfig struct {
	Name   string   `yaml:"name"`
	Prefix string   `yaml:"prefix"`
	Order  []string `yaml:"order,omitempty"`
	// FromCareer derives Order from the career source, newest role first.
	FromCareer bool `yaml:"from_career,omitempty"`
}

// RetrievalConfig configures ranking.
type RetrievalConfig struct {
	TopK    int             `yaml:"top_k"`
	Recency []RecencyConfig `yaml:"recency,omitempty"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Owner     OwnerConfig     `yaml:"owner"`
	Sources   SourcesConfig   `yaml:"sources"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./portfoliorag.yaml first, then ~/.config/portfoliorag/config.yaml.
// If neither exists, it writes defaults to ~/.config/portfoliorag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "portfoliorag.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first configuration error as ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Owner.Name == "" {
		return invalid("owner.name is required")
	}
	switch c.Embedder.Type {
	case "gemini", "openai", "ollama", "fastembed":
	default:
		return invalid("unknown embedder type %q", c.Embedder.Type)
	}
	if c.Embedder.Dimension < 0 {
		return invalid("embedder.dimension must not be negative")
	}
	switch c.Corpus.Type {
	case "file":
		if c.Corpus.Path == "" {
			return invalid("corpus.path is required")
		}
	case "qdrant":
		if c.Corpus.Qdrant == nil || c.Corpus.Qdrant.Host == "" || c.Corpus.Qdrant.Collection == "" {
			return invalid("corpus.qdrant.host and corpus.qdrant.collection are required")
		}
	default:
		return invalid("unknown corpus type %q", c.Corpus.Type)
	}
	for i, r := range c.Retrieval.Recency {
		if r.Name == "" {
			return invalid("retrieval.recency[%d].name is required", i)
		}
		if r.Prefix == "" && len(r.Order) == 0 && !r.FromCareer {
			return invalid("retrieval.recency[%d] needs a prefix, an order or from_career", i)
		}
	}
	return nil
}

// CorpusPath is the file corpus location resolved against the sources root.
func (c *AppConfig) CorpusPath() string {
	if filepath.IsAbs(c.Corpus.Path) {
		return c.Corpus.Path
	}
	return filepath.Join(c.Sources.Root, c.Corpus.Path)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "portfoliorag", "config.yaml"), nil
}

func defaultSources() SourcesConfig {
	return SourcesConfig{
		Root:     ".",
		Home:     "src/data/home.json",
		Privacy:  "src/data/privacy.md",
		Projects: "src/data/projects.json",
		Career:   "src/data/career.json",
		Socials:  "src/data/socials.json",
		Routes:   "src/data/routes.json",
		Resume:   "public/resume.tex",
	}
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Owner: OwnerConfig{
			Name:      "Oscar",
			Location:  "Houston, Texas",
			Headline:  "self-taught senior software engineer with full-stack experience",
			ResumeURL: "/resume.pdf",
		},
		Sources:  defaultSources(),
		Embedder: EmbedderConfig{Type: "gemini"},
		Corpus:   CorpusConfig{Type: "file", Path: "src/data/embeddings.json"},
		Retrieval: RetrievalConfig{
			TopK:    3,
			Recency: []RecencyConfig{{Name: "career-recency", Prefix: "career:", FromCareer: true}},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Server:  ServerConfig{Addr: ":8787"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultSources()
	s := &cfg.Sources
	for _, f := range []struct {
		field *string
		value string
	}{
		{&s.Root, def.Root},
		{&s.Home, def.Home},
		{&s.Privacy, def.Privacy},
		{&s.Projects, def.Projects},
		{&s.Career, def.Career},
		{&s.Socials, def.Socials},
		{&s.Routes, def.Routes},
		{&s.Resume, def.Resume},
	} {
		if *f.field == "" {
			*f.field = f.value
		}
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	applyEmbedderDefaults(&cfg.Embedder)

	if cfg.Corpus.Type == "" {
		cfg.Corpus.Type = "file"
	}
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = "src/data/embeddings.json"
	}
	if q := cfg.Corpus.Qdrant; q != nil {
		if q.Port == 0 {
			q.Port = 6334
		}
		if q.Collection == "" {
			q.Collection = "portfolio"
		}
		if q.APIKeyEnv == "" {
			q.APIKeyEnv = "QDRANT_API_KEY"
		}
	}

	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8787"
	}
}

func applyEmbedderDefaults(e *EmbedderConfig) {
	switch e.Type {
	case "gemini":
		if e.Model == "" {
			e.Model = "text-embedding-004"
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "GEMINI_API_KEY"
		}
	case "openai":
		if e.BaseURL == "" {
			e.BaseURL = "https://api.openai.com/v1"
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "OPENAI_API_KEY"
		}
		if e.Model == "" {
			e.Model = "text-embedding-3-small"
		}
	case "ollama":
		if e.BaseURL == "" {
			e.BaseURL = "http://localhost:11434/api"
		}
		if e.Model == "" {
			e.Model = "nomic-embed-text"
		}
	case "fastembed":
		if e.Model == "" {
			e.Model = "sentence-transformers/all-MiniLM-L6-v2"
		}
	}
	if e.TimeoutSecs == 0 {
		e.TimeoutSecs = 30
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = 5
	}
}
