package configs

// Kafka configures the activity feed topic. No brokers disables publishing.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"echopub.activities"`
}
