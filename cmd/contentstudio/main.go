package main

import "contentstudio/cmd/handlers"

func main() {
	handlers.Execute()
}
