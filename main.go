package main

import "github.com/shouni/lj-archive/cmd"

func main() {
	cmd.Execute()
}
