package main

import "github.com/haulage-sim/haulage-sim/cmd"

func main() {
	cmd.Execute()
}
