package main

import "github.com/SwyrWolf/DmxRasterizer/cmd"

func main() {
	cmd.Execute()
}
