package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Redis mirror for event broadcast; empty address disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       string

	// Payment provider refund endpoint; empty falls back to the log gateway.
	RefundProviderURL string

	// Reserved for the upstream order-intake consumer.
	KafkaHost string

	// Minimum seconds between customer location broadcasts per order.
	LocationBroadcastSeconds string
}
