package main

import "github.com/txstore-io/txstore/cmd"

func main() {
	cmd.Execute()
}
