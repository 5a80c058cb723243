package main

import "brigade/internal/cmd"

func main() {
	cmd.Execute()
}
