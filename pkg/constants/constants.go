package constants

type ContextKey string

const (
	TxKey     ContextKey = "pgx_tx"
	PoolKey   ContextKey = "pgx_pool"
	LoggerKey ContextKey = "logger"
)
