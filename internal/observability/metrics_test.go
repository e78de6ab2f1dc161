package observability

import (
	"testing"

	"github.com/danmuck/framelink/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordFrameProcessed(0x3001)
	RecordFrameInvalid("footer_signature")
	RecordUnknownProtocol(0x7777)
	RecordBytesRead(64)
	RecordBytesWritten(12)
	RecordFrameSent()
	SetRxBufferUsed(128)
}
