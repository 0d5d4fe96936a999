package configs

import "time"

// Verifier configures OCR of proof screenshots.
type Verifier struct {
	Binary    string        `env:"BINARY" envDefault:"tesseract"`
	Languages string        `env:"LANGUAGES" envDefault:"eng+fra"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
}
