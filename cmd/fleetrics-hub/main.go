package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/fleetrics-io/fleetrics/cmd/fleetrics-hub/app"
)

func main() {
	app.NewApp().Run()
}
