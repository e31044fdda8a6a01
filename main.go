package main

import "tunestream/cmd"

func main() {
	cmd.Execute()
}
