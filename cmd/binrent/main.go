package main

import "binrent/cmd/binrent/commands"

func main() {
	commands.Execute()
}
