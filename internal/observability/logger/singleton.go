package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init construye el logger global a partir de la config. Idempotente:
// llamadas posteriores no tienen efecto, así que debe ejecutarse antes
// de levantar pools o clientes que loggeen.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el logger global. Si nadie llamó Init todavía (tests,
// helpers sueltos) arma uno de desarrollo en nivel info.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named retorna el logger global con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync vacía los buffers pendientes; para usar con defer en los cmd.
func Sync() error {
	if instance == nil {
		return nil
	}
	return instance.Sync()
}
