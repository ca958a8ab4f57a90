package main

import "github.com/ademuri/stream-etl/cmd"

func main() {
	cmd.Execute()
}
