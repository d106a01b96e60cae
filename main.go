package main

import "github.com/frahmantamala/donation-management/cmd"

func main() {
	cmd.Execute()
}
