package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Preflight is answered by the CORS middleware before authentication
	s.RegisterRouteFunc("OPTIONS "+RouteChat, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteChat, ChainMiddleware(s.ChatHandler(), s.APIMiddleware(s.RequireAuth(false), s.RateLimit)...))
	s.RegisterRouteFunc("GET "+RouteWebsocket, ChainMiddleware(s.WebsocketHandler(), s.APIMiddleware(s.RequireAuth(true), s.RateLimit)...))
}
