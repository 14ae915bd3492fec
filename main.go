package main

import "github.com/lepinkainen/goodreader/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
