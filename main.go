package main

import "github.com/PavelKondratiev/zos-connector-plugin/cmd"

func main() {
	cmd.Execute()
}
