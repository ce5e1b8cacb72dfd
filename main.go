package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/isaback/internal/app"
)

// @title           ISA API
// @version         1.0
// @description     ISA back office: users, password reset sessions, tenant settings and notification delivery.
// @contact.name    Contact Support
// @contact.email   support@isa.local
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Keycloak access token.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
