package main

import "beryll-inventory/cmd"

func main() {
	cmd.Execute()
}
