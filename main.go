package main

import "github.com/muninn-vcs/muninn/cli"

func main() {
	cli.Execute()
}
