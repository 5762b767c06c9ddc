// Package app provides application initialization and lifecycle management
// for the gateway. It handles the orchestration of all major components
// including configuration loading, service initialization, and graceful
// shutdown procedures.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Initialize the handler registry and dispatch service
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	application.RegisterHandler("field", someHandler)
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
