package cmd

import (
	"fmt"
)

const banner = `
     _ _       _ _            _
  __| (_) __ _(_) |_ ___  ___| |_
 / _` + "`" + ` | |/ _` + "`" + ` | | __/ _ \/ __| __|
 | (_| | | (_| | | ||  __/\__ \ |_
  \__,_|_|\__, |_|\__\___||___/\__|
          |___/
`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Credential & Bot-Link Service - Version %s\x1b[0m\n\n", Version)
}
