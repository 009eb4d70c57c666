package main

import (
	"kickadvisor-backend/cmd/advisor-cli/commands"
	"kickadvisor-backend/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.ExecuteContext(ctx)
}
