package main

import "github.com/ariebrainware/clinic-reservation/cmd"

func main() {
	cmd.Execute()
}
