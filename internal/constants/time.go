package constants

import "time"

// MonitorPollTimeout is the ceiling on how long the stack event monitor polls
// before giving up
const MonitorPollTimeout = time.Hour

// MonitorReceiveWaitSeconds is the long-poll wait per queue receive call
const MonitorReceiveWaitSeconds = 5

// MonitorReceiveBatchSize is the maximum number of messages fetched per receive call
const MonitorReceiveBatchSize = 10

// SessionNameTimeFormat is the timestamp layout embedded in notification
// session names
const SessionNameTimeFormat = "20060102-150405"
