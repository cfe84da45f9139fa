package config

import (
	"github.com/spf13/pflag"
)

// Overrides флаги командной строки поверх переменных окружения.
// Применяются только явно переданные флаги.
type Overrides struct {
	flagSet  *pflag.FlagSet
	host     string
	port     int
	httpHost string
	httpPort int
	maxDays  int
}

// BindFlags регистрирует --host, --port, --http-host, --http-port, --max-days
func BindFlags(flagSet *pflag.FlagSet) *Overrides {
	o := &Overrides{flagSet: flagSet}
	flagSet.StringVar(&o.host, "host", "0.0.0.0", "TCP server host (SOCKET_HOST)")
	flagSet.IntVar(&o.port, "port", 5001, "TCP server port (SOCKET_PORT)")
	flagSet.StringVar(&o.httpHost, "http-host", "0.0.0.0", "HTTP API host (HTTP_HOST)")
	flagSet.IntVar(&o.httpPort, "http-port", 5000, "HTTP API port (HTTP_PORT)")
	flagSet.IntVar(&o.maxDays, "max-days", 7, "days of slots to keep ahead (SLOT_DAYS_AHEAD)")
	return o
}

// Apply переносит изменённые флаги в конфиг и заново проверяет его
func (o *Overrides) Apply(cfg *Config) error {
	if o.flagSet.Changed("host") {
		cfg.SocketHost = o.host
	}
	if o.flagSet.Changed("port") {
		cfg.SocketPort = o.port
	}
	if o.flagSet.Changed("http-host") {
		cfg.HTTPHost = o.httpHost
	}
	if o.flagSet.Changed("http-port") {
		cfg.HTTPPort = o.httpPort
	}
	if o.flagSet.Changed("max-days") {
		cfg.SlotDaysAhead = o.maxDays
	}
	return cfg.Validate()
}
