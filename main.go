// ./main.go
package main

import (
	"github.com/panelops/teller/cmd"
)

// main is the entry point for the teller application.
func main() {
	cmd.Execute()
}
