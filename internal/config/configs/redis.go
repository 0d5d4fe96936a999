package configs

// Redis configures the shared gateway token cache. An empty Addr keeps the
// token in process memory.
type Redis struct {
	Addr     string `env:"ADDRESS"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Key      string `env:"TOKEN_KEY" envDefault:"echopub:campay:token"`
}
