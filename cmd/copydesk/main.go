package main

import (
	"copydesk/cmd/handlers"
)

func main() {
	handlers.Execute()
}
