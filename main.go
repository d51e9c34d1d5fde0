package main

import "asset-resolver/cmd"

func main() {
	cmd.Execute()
}
