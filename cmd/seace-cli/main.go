package main

import (
	"seaceintel-backend/cmd/seace-cli/commands"
	"seaceintel-backend/lib/serviceutil"
	"seaceintel-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "seace-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
