package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	defaultBaseURL = "https://open-api.bingx.com"
	defaultTimeout = 5 * time.Second
)

type Config struct {
	APIKey    string        `envconfig:"BINGX_API_KEY"`
	APISecret string        `envconfig:"BINGX_API_SECRET"`
	BaseURL   string        `envconfig:"BINGX_BASE_URL" default:"https://open-api.bingx.com"`
	Timeout   time.Duration `envconfig:"BINGX_TIMEOUT" default:"5s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
