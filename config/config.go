package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Provider ProviderConfig `yaml:"provider"`
	Events   EventsConfig   `yaml:"events"`
	Client   ClientConfig   `yaml:"client"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SessionConfig 는 세션 쿠키(JWT) 발급 설정이다.
// Secret 은 yaml 에 두지 않고 SESSION_SECRET 환경변수로 주입하는 것을 권장한다.
type SessionConfig struct {
	Secret       string `yaml:"secret"`
	Issuer       string `yaml:"issuer"`
	TTLHours     int    `yaml:"ttl_hours"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

// StorageConfig 는 대화 저장소 백엔드를 선택한다. driver 는 sqlite(기본) 또는 mongo.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDBName string `yaml:"mongo_db_name"`
}

type ProviderConfig struct {
	// Name 은 gemini(기본), openai, anthropic 중 하나다.
	Name              string      `yaml:"name"`
	Model             string      `yaml:"model"`
	GeminiApiKey      string      `yaml:"gemini_api_key"`
	OpenAIApiKey      string      `yaml:"openai_api_key"`
	AnthropicApiKey   string      `yaml:"anthropic_api_key"`
	SystemInstruction string      `yaml:"system_instruction"`
	MaxOutputTokens   int         `yaml:"max_output_tokens"`
	TimeoutSeconds    int         `yaml:"timeout_seconds"`
	DefaultRetryAfter int         `yaml:"default_retry_after_seconds"`
	Quota             QuotaConfig `yaml:"quota"`
}

// QuotaConfig 는 provider 호출에 대한 로컬 분당/일일 한도를 정의한다.
type QuotaConfig struct {
	// RequestsPerMinute 는 분당 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay 는 일일 최대 요청 수이다. 0 이하면 제한 없음으로 간주한다.
	RequestsPerDay int `yaml:"requests_per_day"`
}

// EventsConfig 는 turn 이벤트 발행 설정이다. brokers 가 비어 있으면 발행하지 않는다.
type EventsConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

// ClientConfig 는 터미널 클라이언트(cmd/chat) 설정이다.
type ClientConfig struct {
	BaseURL  string `yaml:"base_url"`
	Greeting string `yaml:"greeting"`
}

var (
	mu     sync.Mutex
	config *AppConfig
)

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			panic(err)
		}
	} else if !os.IsNotExist(err) {
		panic(err)
	}

	applyEnv(&c)
	applyDefaults(&c)

	mu.Lock()
	config = &c
	mu.Unlock()
}

func GetConfig() AppConfig {
	mu.Lock()
	c := config
	mu.Unlock()
	if c == nil {
		InitApp()
		mu.Lock()
		c = config
		mu.Unlock()
	}

	return *c
}

// SetConfig 는 테스트 등에서 설정을 직접 주입할 때 사용한다. 기본값은 채워서 저장한다.
func SetConfig(c AppConfig) {
	applyDefaults(&c)
	mu.Lock()
	config = &c
	mu.Unlock()
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// applyEnv 는 비밀 값과 배포 환경별 값을 환경변수로 덮어쓴다.
func applyEnv(c *AppConfig) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.SQLitePath, "SQLITE_PATH")
	setString(&c.Storage.MongoURI, "MONGO_URI")
	setString(&c.Provider.Name, "PROVIDER_NAME")
	setString(&c.Provider.Model, "PROVIDER_MODEL")
	setString(&c.Provider.GeminiApiKey, "GEMINI_API_KEY")
	setString(&c.Provider.OpenAIApiKey, "OPENAI_API_KEY")
	setString(&c.Provider.AnthropicApiKey, "ANTHROPIC_API_KEY")
	setString(&c.Events.Brokers, "KAFKA_BOOTSTRAP_SERVERS")
	setString(&c.Client.BaseURL, "CHAT_BASE_URL")

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func applyDefaults(c *AppConfig) {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "gemini-chat"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "chat_session"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/chat.db"
	}
	if c.Storage.MongoDBName == "" {
		c.Storage.MongoDBName = "geminichat"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "gemini"
	}
	if c.Provider.Model == "" {
		switch c.Provider.Name {
		case "openai":
			c.Provider.Model = "gpt-4o-mini"
		case "anthropic":
			c.Provider.Model = "claude-3-5-haiku-latest"
		default:
			c.Provider.Model = "gemini-1.5-flash"
		}
	}
	if c.Provider.MaxOutputTokens <= 0 {
		c.Provider.MaxOutputTokens = 1024
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = 60
	}
	if c.Provider.DefaultRetryAfter <= 0 {
		c.Provider.DefaultRetryAfter = 60
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "chat.turns"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:3000"
	}
	if c.Client.Greeting == "" {
		c.Client.Greeting = "Hello! How can I help you today?"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
