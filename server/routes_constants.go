package server

// Route path constants
const (
	RouteChat      = "/chat"
	RouteWebsocket = "/ws"
	RouteHealth    = "/healthz"
)
