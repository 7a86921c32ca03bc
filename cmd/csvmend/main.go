package main

import "github.com/oleg578/csvmend/cmd/csvmend/cmd"

func main() {
	cmd.Execute()
}
