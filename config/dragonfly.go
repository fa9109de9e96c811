package config

import (
	"fmt"

	"github.com/caarlos0/env/v8"
)

// Dragonfly holds the optional composite-cache connection. The cache is on
// when DRAGONFLY_HOST is set and silently absent otherwise.
type Dragonfly struct {
	Host     string `env:"DRAGONFLY_HOST"`
	Port     int    `env:"DRAGONFLY_PORT" envDefault:"6379"`
	DB       int    `env:"DRAGONFLY_DB" envDefault:"0"`
	Password string `env:"DRAGONFLY_PASSWORD"`
}

func NewDragonflyConfig() *Dragonfly {
	conf := &Dragonfly{}

	if err := env.Parse(conf); err != nil {
		panic(err)
	}

	return conf
}

func (d *Dragonfly) Enabled() bool {
	return d.Host != ""
}

func (d *Dragonfly) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
