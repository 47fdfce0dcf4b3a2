package main

import "github.com/borzacchiello/statelogic/internal/cmd"

func main() {
	cmd.Execute()
}
