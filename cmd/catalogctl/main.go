// Command catalogctl runs schema migrations and issues API tokens.
package main

import (
	"catalog-api/cmd/catalogctl/commands"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	commands.Execute()
}
