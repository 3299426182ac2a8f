package main

import "github.com/cppla/serene/cmd"

func main() {
	cmd.Execute()
}
