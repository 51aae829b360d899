package main

import "github.com/eslsoft/hebcorpus/cmd"

func main() {
	cmd.Execute()
}
