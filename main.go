package main

import "github.com/paneworks/glassdesk_backend/cmd"

func main() {
	cmd.Execute()
}
