package main

import "github.com/modslice/modslice/internal/cmd"

func main() {
	cmd.Execute()
}
