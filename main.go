package main

import "github.com/xrsl/endeavor/cmd"

func main() {
	cmd.Execute()
}
