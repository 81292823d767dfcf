// interceptd CLI - validates and exercises handler files for the
// interception harness.
package main

import "github.com/interceptd/interceptd/pkg/cli"

func main() {
	cli.Execute()
}
