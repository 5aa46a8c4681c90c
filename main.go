package main

import "github.com/pders01/reportzip/cmd"

func main() {
	cmd.Execute()
}
