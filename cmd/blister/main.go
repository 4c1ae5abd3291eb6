package main

import "github.com/blisterfmt/blister/cmd/blister/cmd"

func main() {
	cmd.Execute()
}
