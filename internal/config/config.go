package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"    validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth"        validate:"required"`
	Tasks       TaskConfig        `mapstructure:"tasks"       validate:"required"`
	Translation TranslationConfig `mapstructure:"translation" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings for the management API.
// AdminPasswordHash is a bcrypt hash; use cmd/hash-generator to produce one.
type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"          validate:"required,min=32"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"required"`
	TokenLifetimeMin  int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// TaskConfig tunes the background task manager. Each knob must be positive;
// the manager validates them again at construction time.
type TaskConfig struct {
	MaxWorkers        int `mapstructure:"max_workers"         validate:"required,gt=0"`
	MaxTaskHistory    int `mapstructure:"max_task_history"    validate:"required,gt=0"`
	RestartThreshold  int `mapstructure:"restart_threshold"   validate:"required,gt=0"`
	MaxRecordAgeHours int `mapstructure:"max_record_age_hours" validate:"gte=0"`
}

// TranslationConfig selects and configures the translation provider.
type TranslationConfig struct {
	Provider       string `mapstructure:"provider"        validate:"required,oneof=gemini openai"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"  validate:"required_if=Provider gemini"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"  validate:"required_if=Provider openai"`
	OpenAIBaseURL  string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	Model          string `mapstructure:"model"           validate:"required"`
	TargetLanguage string `mapstructure:"target_language" validate:"required"`

	// MaxRetries is the number of retries after a transient provider failure.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay for exponential backoff between retries.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`

	// MaxChunkTokens bounds the size of a single translation request; longer
	// content is split and translated in pieces.
	MaxChunkTokens int `mapstructure:"max_chunk_tokens" validate:"gt=0"`
}
