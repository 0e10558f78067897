package constant

import "time"

const (
	QUERY_TIMEOUT_DURATION = 10 * time.Second

	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"

	DefaultPageSize uint = 20
	MaxPageSize     uint = 100
)

const (
	JWT_TYPE_ACCESS  = "access"
	JWT_TYPE_REFRESH = "refresh"
)

// Keys used to store request scoped values in the gin context.
const (
	CTX_AUTH_USER = "user"
)
