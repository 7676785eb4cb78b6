// This program provides a wallet for keys held in .ecdsa files.
package main

import "github.com/forgechain/forge/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
