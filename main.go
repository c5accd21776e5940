package main

import "iconforge/cmd"

func main() {
	cmd.Execute()
}
