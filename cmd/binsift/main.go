// cmd/binsift/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/binsift/binsift/cmd/binsift/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}
