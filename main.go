package main

import (
	"github.com/sergev/bno080/adapter"

	// Transports register themselves with the adapter
	_ "github.com/sergev/bno080/i2c"
	_ "github.com/sergev/bno080/uart"
)

func main() {
	adapter.Execute()
}
