package main

import "github.com/LeJamon/goCPSwap/internal/cli"

func main() {
	cli.Execute()
}
