package main

import "github.com/zcash-infra/zartifacts/cmd"

func main() {
	cmd.Execute()
}
