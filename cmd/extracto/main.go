package main

import "github.com/legaltech-cl/extracto/cmd/extracto/cmd"

func main() {
	cmd.Execute()
}
