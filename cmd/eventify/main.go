package main

import (
	"context"
	"fmt"
	"os"

	"eventify/internal/cli"
)

// @title Eventify API
// @version 1.0
// @description Campus event registration: events, team registrations, feedback, achievements and documents.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
