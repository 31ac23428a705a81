package main

import "github.com/mselser95/gasfutures/cmd"

func main() {
	cmd.Execute()
}
