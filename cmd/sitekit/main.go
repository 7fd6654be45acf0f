// Command sitekit runs the tenant hostname resolution service and its
// operational tasks: serving, migrations, seeding and one-off resolution.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
