// Command spriteatlas packs sprite PNGs into a single power-of-two atlas
// and writes the placement metadata next to it.
//
//	spriteatlas pack atlas.toml
//	spriteatlas pack --name ui --out build --folder sprites/ui --rotate
//	spriteatlas unpack build/ui.json --out extracted
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // SIGINT
		}
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
