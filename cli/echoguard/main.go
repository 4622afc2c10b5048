package main

import (
	"os"

	echoguardcmder "github.com/echoguardhq/echoguard/cmd/echoguard"
)

func main() {
	cmd := echoguardcmder.NewEchoguardCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
