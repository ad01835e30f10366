package watcher

// EventChannelBuffer exposes the event buffer size to tests.
const EventChannelBuffer = eventChannelBuffer
