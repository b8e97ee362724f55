package main

import "github.com/pongsant/Assignment-4-Collaboration/cmd/piano/command"

func main() {
	command.Execute()
}
