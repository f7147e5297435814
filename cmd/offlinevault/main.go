package main

import "go-offline-vault/cmd/offlinevault/cmd"

func main() {
	cmd.Execute()
}
