package main

import "github.com/hoermto/unifi-energy/cmd"

func main() {
	cmd.Execute()
}
