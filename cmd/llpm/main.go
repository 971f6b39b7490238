package main

import "github.com/britt/llpm/internal/cli"

func main() {
	cli.Execute()
}
