package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}

// RealtimeConfig contains settings for the WebSocket layer.
type RealtimeConfig struct {
	// AuthTimeoutSeconds bounds how long a freshly connected client may take
	// to present a valid token before the connection is closed.
	AuthTimeoutSeconds int `mapstructure:"auth_timeout_seconds" validate:"required,gt=0"`

	// SendBufferSize is the per-connection outbound queue length. A connection
	// whose queue is full has its next broadcast dropped rather than blocking
	// delivery to other connections.
	SendBufferSize int `mapstructure:"send_buffer_size" validate:"required,gt=0"`

	// RoomShards is the number of lock shards in the room manager.
	RoomShards int `mapstructure:"room_shards" validate:"required,gt=0"`
}

// StorageConfig contains settings for attachment file storage.
type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir"       validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}
