package util

import "context"

type clientInfoKey struct{}

// ClientInfo identifies the caller of a request for event logging.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithClientInfo stores the caller's IP and user agent on ctx.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, ClientInfo{IP: ip, UserAgent: userAgent})
}

// ClientInfoFromContext returns the caller stored by WithClientInfo, if any.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}
