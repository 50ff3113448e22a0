package stockpot

import "time"

type ModelConfig struct {
	Provider string `env:"MODEL_PROVIDER,default=gemini"`
	ModelID  string `env:"MODEL_ID,default=gemini-2.5-flash"`
	APIKey   string `env:"GEMINI_API_KEY,default="`
}

type EngineConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS,default=3"`
	RetryDelay  time.Duration `env:"RETRY_DELAY,default=2s"`
}

type ServerConfig struct {
	Addr            string        `env:"HTTP_ADDR,default=:8080"`
	BodyLimit       int64         `env:"HTTP_BODY_LIMIT,default=1048576"`
	UploadLimit     int64         `env:"HTTP_UPLOAD_LIMIT,default=10485760"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
}

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL,required"`
	MaxConns        int32         `env:"PG_MAX_CONNS,default=8"`
	MinConns        int32         `env:"PG_MIN_CONNS,default=0"`
	MaxConnLifetime time.Duration `env:"PG_MAX_CONN_LIFETIME,default=30m"`
	MaxConnIdleTime time.Duration `env:"PG_MAX_CONN_IDLE_TIME,default=5m"`
}

type ReceiptStoreConfig struct {
	Backend string `env:"RECEIPT_STORE,default=file"` // "file" or "s3"
	Dir     string `env:"RECEIPT_STORE_DIR,default=artifacts/receipts"`
	Bucket  string `env:"RECEIPT_STORE_BUCKET,default="`
	Prefix  string `env:"RECEIPT_STORE_PREFIX,default=receipts/"`
}

type TranscriptConfig struct {
	BaseEndpoint string `env:"TRANSCRIPT_API_ENDPOINT,default=http://localhost:9090"`
}
