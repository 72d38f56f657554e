// Command server runs the play simulator behind its HTTP API.
package main

import (
	"go.uber.org/fx"
)

func main() {
	fx.New(
		Module,
		fx.NopLogger,
		fx.Invoke(run),
	).Run()
}
