package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency"`
	BodyLimit   int    `koanf:"body_limit"`
	AppName     string `koanf:"app_name"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleMilvus     Module = "milvus"
	ModuleIngest     Module = "ingest"
	ModuleDatabase   Module = "database"
	ModuleOpenAI     Module = "openai"
	ModuleS3         Module = "s3"
	ModuleCors       Module = "cors"
	ModuleServer     Module = "server"
	ModuleSetting    Module = "setting"
	ModuleUpload     Module = "upload"
	ModuleRetriever  Module = "retriever"
	ModuleChunking   Module = "chunking"
	ModuleAnalyze    Module = "analyze"
	ModuleCompliance Module = "compliance"
	ModuleQuery      Module = "query"
)

type databaseConfig struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"required"`
	User         string   `koanf:"user" validate:"required"`
	Password     string   `koanf:"password"`
	Name         string   `koanf:"name" validate:"required"`
	Replicas     []string `koanf:"replicas"`
	MaxIdleConns int      `koanf:"max_idle_conns"`
	MaxOpenConns int      `koanf:"max_open_conns"`
	MaxLifetime  int      `koanf:"max_lifetime"`
}

type openaiConfig struct {
	Key            string  `koanf:"key"`
	Model          string  `koanf:"model" validate:"required"`
	EmbeddingModel string  `koanf:"embedding_model" validate:"required"`
	Temperature    float64 `koanf:"temperature"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
	AllowMethods []string `koanf:"allow_methods"`
	AllowHeaders []string `koanf:"allow_headers"`
}

type milvusConfig struct {
	Address         string          `koanf:"address" validate:"required"`
	Collection      string          `koanf:"collection" validate:"required"`
	IndexHNSWConfig indexHNSWConfig `koanf:"index_hnsw_config"`
}

type indexHNSWConfig struct {
	MetricType     string `koanf:"metric_type"`
	M              int    `koanf:"m"`
	EfConstruction int    `koanf:"ef_construction"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

// chunkingConfig carries the token budget for the merge pass. MinTokens must
// stay strictly below MaxTokens; the merge engine assumes this and does not
// re-check it, so an invalid budget is rejected here at load time.
type chunkingConfig struct {
	MinTokens         int    `koanf:"min_tokens" validate:"required,gt=0"`
	MaxTokens         int    `koanf:"max_tokens" validate:"required,gtfield=MinTokens"`
	TokenizerEncoding string `koanf:"tokenizer_encoding"`
}

type retrieverConfig struct {
	TopK               int     `koanf:"top_k"`
	ComplianceMinScore float64 `koanf:"compliance_min_score"`
}

type config struct {
	Server    serverConfig    `koanf:"server"`
	Database  databaseConfig  `koanf:"database"`
	OpenAI    openaiConfig    `koanf:"openai"`
	LogLevel  logLevel        `koanf:"log_level"`
	Dns       string          `koanf:"dns"`
	S3        s3Config        `koanf:"s3"`
	Cors      corsConfig      `koanf:"cors"`
	Milvus    milvusConfig    `koanf:"milvus"`
	Chunking  chunkingConfig  `koanf:"chunking"`
	Retriever retrieverConfig `koanf:"retriever"`
}

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = config{
	Server: serverConfig{
		Port:    8000,
		Mode:    "release",
		AppName: "rfp-analyzer",
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "rfp_analyzer",
		MaxIdleConns: 4,
		MaxOpenConns: 16,
		MaxLifetime:  30,
	},
	OpenAI: openaiConfig{
		Key:            "",
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-large",
		Temperature:    0.1,
	},
	LogLevel: Info,
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "documents",
	},
	Milvus: milvusConfig{
		Address:    "localhost:19530",
		Collection: "rfp_chunks",
		IndexHNSWConfig: indexHNSWConfig{
			MetricType:     "IP",
			M:              16,
			EfConstruction: 200,
		},
	},
	Chunking: chunkingConfig{
		MinTokens:         512,
		MaxTokens:         1024,
		TokenizerEncoding: "cl100k_base",
	},
	Retriever: retrieverConfig{
		TopK:               8,
		ComplianceMinScore: 0.75,
	},
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// Init loads configuration from the given YAML file, environment overrides
// (APP_ prefix) and defaults, then validates the result. An invalid chunking
// budget is fatal: the merge engine must never run with min_tokens >= max_tokens.
func Init(path string) error {
	var initErr error
	once.Do(func() {
		k := koanf.New(".")
		Cfg = defaultConfig

		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil && !os.IsNotExist(e) {
			initErr = e
			return
		}

		// env APP_CHUNKING__MIN_TOKENS -> chunking.min_tokens
		if e := k.Load(env.Provider("APP_", ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
		}), nil); e != nil {
			initErr = e
			return
		}

		if e := k.Unmarshal("", &Cfg); e != nil {
			initErr = fmt.Errorf("unmarshal config: %w", e)
			return
		}

		if Cfg.Dns == "" {
			Cfg.Dns = buildMySQLDSN(Cfg.Database)
		}

		validate := validator.New()
		if err := validate.Struct(Cfg); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok {
				var sb strings.Builder
				sb.WriteString(fmt.Sprintf("%v config validation failed:\n", ModuleSetting))
				for _, e := range errs {
					sb.WriteString(
						fmt.Sprintf("  - %s: failed '%s' (value: %v)\n", e.Field(), e.Tag(), e.Value()),
					)
				}
				initErr = fmt.Errorf("%s", sb.String())
			} else {
				initErr = err
			}
		}
	})
	return initErr
}

func init() {
	if err := Init("config.yaml"); err != nil {
		log.Fatalf("config: %v", err)
	}
}
