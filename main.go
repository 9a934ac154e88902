package main

import "github.com/salesloop/crm-backend/cmd"

func main() {
	cmd.Execute()
}
