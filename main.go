package main

import "github.com/technodrive/vehictrl/cmd"

func main() {
	cmd.Execute()
}
