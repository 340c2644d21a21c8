package constants

// Static route constants
const (
	APIRoute      = "/api"
	ListingsRoute = "/listings"
	MetricsRoute  = "/metrics"
)
