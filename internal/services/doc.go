// Package services implements the business logic layer of the gateway.
// It provides a clean separation between HTTP handlers and the multipart
// fan-out machinery, ensuring that business rules are centralized and
// testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- DispatchService: runs decoded form fields against registered
//	  downstream handlers concurrently and collects their responses
//	- HealthService: provides system health checks
//
// The Registry maps field names to http.Handler values; it is populated
// at startup and consulted by DispatchService on every request.
//
// # Error Handling
//
// Services return domain-specific errors that handlers transform into
// RFC 7807 problem responses:
//
//	- ErrHandlerNotFound when a field has no registered handler
//	- context errors when a dispatch is cancelled or times out
package services
