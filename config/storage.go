package config

// StorageConfig contains the S3-compatible object store configuration used
// for course materials and assignment attachments.
type StorageConfig struct {
	Endpoint  string `env:"ENDPOINT"   envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"pulsecamp"`
	SecretKey string `env:"SECRET_KEY" envDefault:"pulsecamp"`
	Bucket    string `env:"BUCKET"     envDefault:"materials"`
	UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`

	// PublicBaseURL overrides the URL prefix handed to browsers, for setups
	// where the store sits behind a CDN or reverse proxy.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:""`
}
