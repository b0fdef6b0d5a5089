package contextkeys

type contextKey string

// DBContextKey is the key under which the request's *gorm.DB (pool or transaction) is stored.
const DBContextKey = contextKey("db")
