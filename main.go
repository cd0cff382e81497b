package main

import "github.com/jjenkins/visabulletin/cmd"

func main() {
	cmd.Execute()
}
