package main

import "github.com/LegacyCodeHQ/ppfront/cmd"

func main() {
	cmd.Execute()
}
