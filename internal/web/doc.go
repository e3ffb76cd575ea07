// Package web is the HTTP layer: a chi router behind handlers that return
// errors, middleware over HandlerFunc, a central error handler and a server
// runner with graceful shutdown.
//
// Handlers declare their routes:
//
//	type CartHandler struct{ ... }
//
//	func (h *CartHandler) Routes(r web.Router) {
//	    r.GET("/api/cart", h.list)
//	    r.POST("/api/cart/items", h.add)
//	}
//
// and the App wires them:
//
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithMiddleware(root.Middleware()),
//	    web.WithHandlers(cartHandler, authHandler),
//	    web.WithErrorHandler(handlers.ErrorHandler(bundle)),
//	)
//	err := web.Run(ctx, app, web.Address(":8080"), web.ShutdownHook(db.Shutdown(pool)))
package web
