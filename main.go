package main

import "github.com/jsphweid/staffdex/cmd"

func main() {
	cmd.Execute()
}
