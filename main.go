package main

import "traintracker/cmd"

func main() {
	cmd.Execute()
}
