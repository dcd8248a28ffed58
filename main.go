package main

import "github.com/juststeveking/lodestone/cmd"

func main() {
	cmd.Execute()
}
