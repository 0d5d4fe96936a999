package configs

// Auth configures bearer token validation. Tokens are HS256 signed by the
// identity service with Secret.
type Auth struct {
	Secret string `env:"SECRET,required,notEmpty"`
	// Issuer, when set, must match the iss claim.
	Issuer string `env:"ISSUER"`
}
