package main

import (
	"os"

	"github.com/zengent/codelens/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
