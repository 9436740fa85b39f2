package main

import (
	"flowledger/cmd"
)

func main() {
	cmd.RootCmd.Execute()
}
