package kickstarter

import (
	"kickadvisor-backend/lib/restyutil"
	"kickadvisor-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("kickadvisor.lib.scrapers.kickstarter")

func (c Client) SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, tracer, out)
}
