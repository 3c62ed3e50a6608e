package main

import "github.com/diogo/concierge/internal/commands"

func main() {
	commands.Execute()
}
