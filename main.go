package main

import "github.com/fitstack/apiserver/cmd"

func main() {
	cmd.Execute()
}
