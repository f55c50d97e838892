package main

import "zcsbot/cmd"

func main() {
	cmd.Execute()
}
