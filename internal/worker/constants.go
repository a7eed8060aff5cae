package worker

// Log Messages - Worker Pool
const (
	LogMsgWorkerJobFailed  = "Worker job failed"
	LogMsgJobQueueFull     = "Job queue full, dropping job"
	LogMsgWorkerPoolClosed = "Worker pool stopped"
)
