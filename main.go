package main

import "github.com/fotogo/gallery-core/cmd"

func main() {
	cmd.Execute()
}
