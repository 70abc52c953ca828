package main

import "github.com/TheBoringRats/ratcrowler/internal/cli"

func main() {
	cli.Execute()
}
