package middleware

// Gin context keys shared by middleware and handlers.
const (
	CtxRequestID = "request_id"
	CtxRealIP    = "real_ip"
	CtxUserID    = "userID"
	CtxUser      = "user"
)
