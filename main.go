package main

import "github.com/rmoreira/politicos/cmd"

func main() {
	cmd.Execute()
}
