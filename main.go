package main

import "github.com/cfdsim/simplecfd/cmd"

func main() {
	cmd.Execute()
}
