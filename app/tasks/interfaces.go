package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API layer to manage background
// channel processing.
// Example usage:
//
//	scheduler := NewScheduler(channelRepo, postRepo, client, assembler)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewParseChannelTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
