package main

import "github.com/BasilOkoth/digitest/cmd/digitest/cmd"

func main() {
	cmd.Execute()
}
