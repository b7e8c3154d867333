package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Store     StoreConfig
	Retrieval RetrievalConfig
	Tweet     TweetConfig
	Social    SocialConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	retrieval, err := loadRetrievalConfig()
	if err != nil {
		return nil, err
	}

	social, err := loadSocialConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Store:     store,
		Retrieval: retrieval,
		Tweet:     TweetConfig{PromptsPath: getEnvOrDefault("TWEET_PROMPTS_PATH", "./tweet_prompts.json")},
		Social:    social,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string
	Timeout  time.Duration

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	DeepSeekKey   string
	TogetherKey   string
	GroqKey       string

	Ark ArkConfig

	OllamaHost        string
	OllamaModel       string
	OllamaTemperature float32
	AskMaxTokens      int
	AskContextWindow  int
	TweetMaxTokens    int

	VoicePolish bool
	VoiceEmoji  bool
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// OllamaURL 解析 Ollama 服务地址，接受 "host"、"host:port" 以及带协议的写法。
func (c AIConfig) OllamaURL() (*url.URL, error) {
	raw := strings.Trim(strings.TrimSpace(c.OllamaHost), "\"'")

	defaultPort := "11434"
	scheme, hostport, ok := strings.Cut(raw, "://")
	switch {
	case !ok:
		scheme, hostport = "http", raw
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	default:
		return nil, fmt.Errorf("invalid OLLAMA_HOST value %q: unsupported scheme %q", c.OllamaHost, scheme)
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		// 没有端口
		host, port = strings.Trim(hostport, "[]"), defaultPort
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return nil, fmt.Errorf("invalid OLLAMA_HOST value %q: bad port %q", c.OllamaHost, port)
	}

	u := &url.URL{Scheme: scheme, Host: net.JoinHostPort(host, port)}
	if path != "" {
		u.Path = "/" + path
	}
	return u, nil
}

func loadAIConfig() (AIConfig, error) {
	timeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	ollamaTemp := float32(0.7)
	if override, err := parseOptionalFloatEnv("OLLAMA_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		ollamaTemp = float32(*override)
	}

	askTokens, err := parseIntEnv("ASK_MAX_TOKENS", 1000)
	if err != nil {
		return AIConfig{}, err
	}

	askWindow, err := parseIntEnv("ASK_CONTEXT_WINDOW", 4096)
	if err != nil {
		return AIConfig{}, err
	}

	tweetTokens, err := parseIntEnv("TWEET_MAX_TOKENS", 100)
	if err != nil {
		return AIConfig{}, err
	}

	emoji, err := parseBoolEnv("AI_VOICE_EMOJI", false)
	if err != nil {
		return AIConfig{}, err
	}

	polish, err := parseBoolEnv("AI_VOICE_POLISH", false)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:      strings.ToLower(getEnvOrDefault("AI_PROVIDER", "openai")),
		Timeout:       timeout,
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		DeepSeekKey:   strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")),
		TogetherKey:   strings.TrimSpace(os.Getenv("TOGETHER_API_KEY")),
		GroqKey:       strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		},
		OllamaHost:        getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnvOrDefault("OLLAMA_MODEL", "augustine"),
		OllamaTemperature: ollamaTemp,
		AskMaxTokens:      askTokens,
		AskContextWindow:  askWindow,
		TweetMaxTokens:    tweetTokens,
		VoicePolish:       polish,
		VoiceEmoji:        emoji,
	}, nil
}

// StoreConfig 描述会话存储配置。
type StoreConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

// Persistent 表示是否使用数据库而不是内存存储。
func (c StoreConfig) Persistent() bool {
	return c.Driver != "" && c.Driver != "memory"
}

func loadStoreConfig() (StoreConfig, error) {
	autoMigrate, err := parseBoolEnv("STORE_AUTO_MIGRATE", true)
	if err != nil {
		return StoreConfig{}, err
	}

	mysqlHost := strings.TrimSpace(os.Getenv("MYSQL_HOST"))
	defaultDriver := "memory"
	if mysqlHost != "" {
		defaultDriver = "mysql"
	}
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", defaultDriver))

	cfg := StoreConfig{Driver: driver, AutoMigrate: autoMigrate}
	switch driver {
	case "memory":
	case "mysql":
		if mysqlHost == "" {
			return StoreConfig{}, fmt.Errorf("STORE_DRIVER=mysql requires MYSQL_HOST")
		}
		cfg.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			os.Getenv("MYSQL_USER"),
			os.Getenv("MYSQL_PASS"),
			mysqlHost,
			getEnvOrDefault("MYSQL_PORT", "3306"),
			os.Getenv("MYSQL_DB"),
		)
	case "postgres":
		cfg.DSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
		if cfg.DSN == "" {
			return StoreConfig{}, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
		cfg.DSN = getEnvOrDefault("SQLITE_PATH", "./augustine.db")
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value: %q", driver)
	}
	return cfg, nil
}

// RetrievalConfig 描述向量检索配置。
type RetrievalConfig struct {
	QdrantHost string
	QdrantPort int
	Collection string
	TopK       int
	EmbedModel string
	VectorSize int
	Timeout    time.Duration
	CorpusDir  string
}

// Enabled 表示是否配置了 Qdrant。
func (c RetrievalConfig) Enabled() bool {
	return c.QdrantHost != ""
}

// Addr 返回 Qdrant gRPC 地址。
func (c RetrievalConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.QdrantHost, c.QdrantPort)
}

func loadRetrievalConfig() (RetrievalConfig, error) {
	port, err := parseIntEnv("QDRANT_PORT", 6334)
	if err != nil {
		return RetrievalConfig{}, err
	}

	topK, err := parseIntEnv("RETRIEVAL_TOP_K", 3)
	if err != nil {
		return RetrievalConfig{}, err
	}
	if topK < 1 {
		topK = 1
	}

	vectorSize, err := parseIntEnv("RETRIEVAL_VECTOR_SIZE", 384)
	if err != nil {
		return RetrievalConfig{}, err
	}

	// 检索默认不设超时。
	timeout, err := parseDurationEnv("RETRIEVAL_TIMEOUT", 0)
	if err != nil {
		return RetrievalConfig{}, err
	}

	return RetrievalConfig{
		QdrantHost: strings.TrimSpace(os.Getenv("QDRANT_HOST")),
		QdrantPort: port,
		Collection: getEnvOrDefault("QDRANT_COLLECTION", "augustine_texts"),
		TopK:       topK,
		EmbedModel: getEnvOrDefault("RETRIEVAL_EMBED_MODEL", "all-minilm"),
		VectorSize: vectorSize,
		Timeout:    timeout,
		CorpusDir:  getEnvOrDefault("CORPUS_DIR", "./augustine_texts"),
	}, nil
}

// TweetConfig 描述推文生成配置。
type TweetConfig struct {
	PromptsPath string
}

// SocialConfig 描述社交平台与图像生成配置。
type SocialConfig struct {
	APIKey           string
	APISecret        string
	AccessToken      string
	AccessSecret     string
	BearerToken      string
	BotUsername      string
	LastSeenFile     string
	MentionsInterval time.Duration
	ImageGenURL      string
}

// Enabled 表示是否提供了发推所需的 OAuth1 凭证。
func (c SocialConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

func loadSocialConfig() (SocialConfig, error) {
	interval, err := parseDurationEnv("MENTIONS_INTERVAL", 30*time.Second)
	if err != nil {
		return SocialConfig{}, err
	}

	return SocialConfig{
		APIKey:           strings.TrimSpace(os.Getenv("TWITTER_API_KEY")),
		APISecret:        strings.TrimSpace(os.Getenv("TWITTER_API_SECRET")),
		AccessToken:      strings.TrimSpace(os.Getenv("TWITTER_ACCESS_TOKEN")),
		AccessSecret:     strings.TrimSpace(os.Getenv("TWITTER_ACCESS_SECRET")),
		BearerToken:      strings.TrimSpace(os.Getenv("TWITTER_BEARER_TOKEN")),
		BotUsername:      strings.TrimPrefix(strings.TrimSpace(os.Getenv("TWITTER_BOT_USERNAME")), "@"),
		LastSeenFile:     getEnvOrDefault("TWITTER_LAST_SEEN_FILE", "last_seen_id.txt"),
		MentionsInterval: interval,
		ImageGenURL:      getEnvOrDefault("IMAGEGEN_URL", "http://127.0.0.1:7860"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// 纯数字按秒处理。
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
