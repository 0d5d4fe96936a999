package configs

import "time"

// Sweep configures the background job completing campaigns past their end
// date.
type Sweep struct {
	Interval  time.Duration `env:"INTERVAL" envDefault:"1h"`
	BatchSize int           `env:"BATCH_SIZE" envDefault:"100"`
}

// Activity configures the asynchronous audit log.
type Activity struct {
	BufferSize   int           `env:"BUFFER_SIZE" envDefault:"1024"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}
