package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		TimeoutSecs int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Encoder struct {
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"encoder"`

	Database struct {
		Backend   string `yaml:"backend"`
		Path      string `yaml:"path"`
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
	} `yaml:"database"`

	Scraper struct {
		BaseURL     string  `yaml:"base_url"`
		RateLimit   float64 `yaml:"rate_limit"`
		TimeoutSecs int     `yaml:"timeout_seconds"`
	} `yaml:"scraper"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Server struct {
		Port string `yaml:"port"`
		TopK int    `yaml:"top_k"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/studychat/config.yaml"),
			"/etc/studychat/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "llama3-8b-8192"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 512
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.TimeoutSecs == 0 {
		config.LLM.TimeoutSecs = 60
	}

	if config.Encoder.BaseURL == "" {
		config.Encoder.BaseURL = "http://localhost:11434"
	}
	if config.Encoder.Model == "" {
		config.Encoder.Model = "nomic-embed-text:latest"
	}
	if config.Encoder.VectorDim == 0 {
		config.Encoder.VectorDim = 768
	}

	if config.Database.Backend == "" {
		config.Database.Backend = "chromem"
	}
	if config.Database.Path == "" {
		config.Database.Path = "./studychat.db"
	}
	if config.Database.TableName == "" {
		config.Database.TableName = "chunks"
	}

	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.TimeoutSecs == 0 {
		config.Scraper.TimeoutSecs = 30
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 400
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 100
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.TopK == 0 {
		config.Server.TopK = 1
	}
}

func mergeWithEnv(config *Config) {
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Encoder.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}
