package redis

import "time"

// Config describes the Redis server holding shared dictionaries.
type Config struct {
	// ConnectionURL in the form "redis://:password@localhost:6379/0".
	ConnectionURL  string        `env:"FIELDRULES_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Key            string        `env:"FIELDRULES_REDIS_KEY" envDefault:"fieldrules:dictionary"`
	RetryAttempts  int           `env:"FIELDRULES_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"FIELDRULES_REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"FIELDRULES_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

// DefaultKey is the hash used when Config.Key is empty.
const DefaultKey = "fieldrules:dictionary"
