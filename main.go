package main

import "github.com/penwyp/go-cost-tracker/commands"

func main() {
	commands.Execute()
}
