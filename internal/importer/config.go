package importer

import "time"

// Config tunes the import pipeline.
type Config struct {
	BurstSize    int           `env:"IMPORT_BURST_SIZE" envDefault:"10"`
	BurstDelay   time.Duration `env:"IMPORT_BURST_DELAY" envDefault:"1s"`
	FetchRetries int           `env:"IMPORT_FETCH_RETRIES" envDefault:"3"`
	RetryDelay   time.Duration `env:"IMPORT_RETRY_DELAY" envDefault:"2s"`
	// Overlap is subtracted from the watermark to cover clock skew.
	Overlap      time.Duration `env:"IMPORT_OVERLAP" envDefault:"5m"`
	OnlyInGame   bool          `env:"IMPORT_ONLY_IN_GAME" envDefault:"true"`
	InitialNpcID int           `env:"IMPORT_INITIAL_NPC_ID" envDefault:"10500"`
	NpcDelay     time.Duration `env:"IMPORT_NPC_DELAY" envDefault:"3s"`
}

func (c Config) withDefaults() Config {
	if c.BurstSize <= 0 {
		c.BurstSize = 10
	}
	if c.FetchRetries < 0 {
		c.FetchRetries = 0
	}
	if c.InitialNpcID <= 0 {
		c.InitialNpcID = 10500
	}
	return c
}
