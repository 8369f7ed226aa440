package config

// QuizConfig contains the chat-model configuration behind quiz generation.
// Quiz routes return an error rather than failing startup when the API key is
// missing, so the portal runs without it.
type QuizConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey  string `env:"API_KEY"  envDefault:""`
	Model   string `env:"MODEL"    envDefault:"gpt-4o-mini"`
}
