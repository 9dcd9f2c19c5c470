// Idiomatic entrypoint for Cobra CLI that defers handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/npupass/compiler/cmd"
)

func main() {
	cmd.Execute()
}
