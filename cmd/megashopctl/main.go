package main

import "megashop/cmd/megashopctl/commands"

func main() {
	commands.Execute()
}
